package controllers

import (
	"time"

	"NovaCTF/database"
	"NovaCTF/dto"
	"NovaCTF/models"
	"NovaCTF/services"
	"NovaCTF/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// isUserInTeam 是一个辅助函数，检查用户是否已在队伍中
func isUserInTeam(userID uint32) (bool, error) {
	var count int64
	err := database.DB.Model(&models.TeamMember{}).Where("user_id = ?", userID).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func CreateTeam(c *gin.Context) {
	userID := currentUserID(c)

	inTeam, err := isUserInTeam(userID)
	if err != nil {
		utils.Error(c, 5000, "数据库错误")
		return
	}
	if inTeam {
		utils.Error(c, 3001, "User already in a team")
		return
	}

	var req dto.CreateTeamReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 1001, "参数无效")
		return
	}
	req.Normalize()

	var existingTeam models.Team
	if err := database.DB.Where("team_name = ?", req.TeamName).First(&existingTeam).Error; err == nil {
		utils.Error(c, 3001, "Team name already exists")
		return
	}

	newTeam := models.Team{
		TeamName:       req.TeamName,
		LeaderID:       userID,
		InvitationCode: utils.GenerateInvitationCode(12),
		TeamDescribe:   req.TeamDescribe,
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&newTeam).Error; err != nil {
			return err
		}
		leaderMember := models.TeamMember{
			TeamID:   newTeam.ID,
			UserID:   userID,
			Role:     models.TeamRoleLeader,
			JoinedAt: time.Now(),
		}
		return tx.Create(&leaderMember).Error
	})
	if err != nil {
		utils.Error(c, 5000, "创建队伍失败: "+err.Error())
		return
	}

	utils.Success(c, "Team created successfully", gin.H{
		"id":              newTeam.ID,
		"team_name":       newTeam.TeamName,
		"leader_id":       newTeam.LeaderID,
		"invitation_code": newTeam.InvitationCode,
	})
}

func JoinTeam(c *gin.Context) {
	userID := currentUserID(c)

	inTeam, err := isUserInTeam(userID)
	if err != nil {
		utils.Error(c, 5000, "数据库错误")
		return
	}
	if inTeam {
		utils.Error(c, 3001, "User already in a team")
		return
	}

	var req dto.JoinTeamReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 1001, "参数无效")
		return
	}

	var team models.Team
	if err := database.DB.Where("invitation_code = ?", req.InvitationCode).First(&team).Error; err != nil {
		utils.Error(c, 3002, "邀请码无效")
		return
	}
	if team.TeamStatus == models.TeamStatusBanned {
		utils.Error(c, 4003, "队伍已被封禁")
		return
	}

	member := models.TeamMember{
		TeamID:   team.ID,
		UserID:   userID,
		Role:     models.TeamRoleMember,
		JoinedAt: time.Now(),
	}
	if err := database.DB.Create(&member).Error; err != nil {
		utils.Error(c, 5000, "加入队伍失败: "+err.Error())
		return
	}

	utils.Success(c, "Joined team successfully", gin.H{
		"team_id":   team.ID,
		"team_name": team.TeamName,
	})
}

// MyTeam —— 当前用户所在队伍及成员列表
func MyTeam(c *gin.Context) {
	team, err := services.TeamOfUser(currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	var members []models.TeamMember
	database.DB.Preload("User").Where("team_id = ?", team.ID).Find(&members)

	type memberRow struct {
		UserID   uint32                `json:"user_id"`
		Username string                `json:"username"`
		Role     models.TeamMemberRole `json:"role"`
	}
	memberList := make([]memberRow, 0, len(members))
	for _, m := range members {
		memberList = append(memberList, memberRow{
			UserID:   m.UserID,
			Username: m.User.Username,
			Role:     m.Role,
		})
	}

	utils.Success(c, "success", gin.H{
		"id":              team.ID,
		"team_name":       team.TeamName,
		"team_describe":   team.TeamDescribe,
		"leader_id":       team.LeaderID,
		"invitation_code": team.InvitationCode,
		"score":           services.TeamTotal(team.ID),
		"members":         memberList,
	})
}

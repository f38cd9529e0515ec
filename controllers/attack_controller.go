package controllers

import (
	"strconv"

	"NovaCTF/database"
	"NovaCTF/dto"
	"NovaCTF/models"
	"NovaCTF/services"
	"NovaCTF/utils"
	"github.com/gin-gonic/gin"
)

// SubmitToken —— 提交夺取的防御令牌换取攻击分
func SubmitToken(c *gin.Context) {
	challengeID, _ := strconv.Atoi(c.Param("id"))

	var req dto.SubmitTokenReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 1001, "参数无效: "+err.Error())
		return
	}
	req.Normalize()
	if req.Token == "" {
		utils.Error(c, 1001, "token 不能为空")
		return
	}

	attack, err := services.SubmitDefenseToken(currentUserID(c), uint32(challengeID), req.Token)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Success(c, "攻击成功！", gin.H{
		"ok":             true,
		"points_awarded": attack.PointsAwarded,
	})
}

// GetAttackLog —— 查询题目最近的攻击事件
func GetAttackLog(c *gin.Context) {
	challengeID, _ := strconv.Atoi(c.Param("id"))

	var challenge models.Challenge
	if err := database.DB.First(&challenge, challengeID).Error; err != nil {
		utils.Error(c, 4004, "题目不存在")
		return
	}
	if challenge.Mode != models.ModeAttackDefense {
		utils.Error(c, 1002, "该题目不是攻防模式")
		return
	}

	var events []models.AttackEvent
	database.DB.Where("challenge_id = ?", challengeID).
		Order("created_at DESC").Limit(100).Find(&events)

	type attackInfo struct {
		ID             uint64 `json:"id"`
		AttackerTeamID uint32 `json:"attacker_team_id"`
		VictimTeamID   uint32 `json:"victim_team_id"`
		Tick           int64  `json:"tick"`
		PointsAwarded  int    `json:"points_awarded"`
		CreatedAt      string `json:"created_at"`
	}
	result := make([]attackInfo, 0, len(events))
	for _, ev := range events {
		result = append(result, attackInfo{
			ID:             ev.ID,
			AttackerTeamID: ev.AttackerTeamID,
			VictimTeamID:   ev.VictimTeamID,
			Tick:           ev.Tick,
			PointsAwarded:  ev.PointsAwarded,
			CreatedAt:      ev.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	utils.Success(c, "success", result)
}

// GetServiceStatus —— 查询题目所有队伍的服务状态快照
func GetServiceStatus(c *gin.Context) {
	challengeID, _ := strconv.Atoi(c.Param("id"))

	var challenge models.Challenge
	if err := database.DB.First(&challenge, challengeID).Error; err != nil {
		utils.Error(c, 4004, "题目不存在")
		return
	}
	if challenge.Mode != models.ModeAttackDefense {
		utils.Error(c, 1002, "该题目不是攻防模式")
		return
	}

	utils.Success(c, "success", services.CollectADStatus(uint32(challengeID)))
}

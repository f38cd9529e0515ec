package controllers

import (
	"strconv"

	"NovaCTF/database"
	"NovaCTF/models"
	"NovaCTF/services"
	"NovaCTF/utils"
	"github.com/gin-gonic/gin"
)

// GetKothStatus —— 查询 KotH 题目当前占领方
func GetKothStatus(c *gin.Context) {
	challengeID, _ := strconv.Atoi(c.Param("id"))

	var challenge models.Challenge
	if err := database.DB.First(&challenge, challengeID).Error; err != nil {
		utils.Error(c, 4004, "题目不存在")
		return
	}
	if challenge.Mode != models.ModeKotH {
		utils.Error(c, 1002, "该题目不是 KotH 模式")
		return
	}

	open, err := services.CurrentOwner(database.DB, uint32(challengeID))
	if err != nil {
		utils.Error(c, 5000, "查询失败")
		return
	}
	if open == nil {
		utils.Success(c, "success", gin.H{"owner_team_id": nil, "owner_team_name": nil})
		return
	}

	var team models.Team
	database.DB.First(&team, open.OwnerTeamID)
	utils.Success(c, "success", gin.H{
		"owner_team_id":   open.OwnerTeamID,
		"owner_team_name": team.TeamName,
		"since":           open.FromTs,
	})
}

// GetOwnershipHistory —— 查询 KotH 占领历史区间
func GetOwnershipHistory(c *gin.Context) {
	challengeID, _ := strconv.Atoi(c.Param("id"))

	var challenge models.Challenge
	if err := database.DB.First(&challenge, challengeID).Error; err != nil {
		utils.Error(c, 4004, "题目不存在")
		return
	}
	if challenge.Mode != models.ModeKotH {
		utils.Error(c, 1002, "该题目不是 KotH 模式")
		return
	}

	type historyRow struct {
		OwnerTeamID   uint32  `json:"owner_team_id"`
		OwnerTeamName string  `json:"owner_team_name"`
		FromTs        string  `json:"from_ts"`
		ToTs          *string `json:"to_ts"`
		PointsAwarded int     `json:"points_awarded"`
	}

	var events []models.OwnershipEvent
	database.DB.Where("challenge_id = ?", challengeID).
		Order("from_ts DESC").Limit(100).Find(&events)

	result := make([]historyRow, 0, len(events))
	for _, ev := range events {
		var team models.Team
		database.DB.First(&team, ev.OwnerTeamID)
		row := historyRow{
			OwnerTeamID:   ev.OwnerTeamID,
			OwnerTeamName: team.TeamName,
			FromTs:        ev.FromTs.Format("2006-01-02 15:04:05"),
			PointsAwarded: ev.PointsAwarded,
		}
		if ev.ToTs != nil {
			formatted := ev.ToTs.Format("2006-01-02 15:04:05")
			row.ToTs = &formatted
		}
		result = append(result, row)
	}

	utils.Success(c, "success", result)
}

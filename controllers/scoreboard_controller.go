package controllers

import (
	"NovaCTF/services"
	"NovaCTF/utils"
	"github.com/gin-gonic/gin"
)

// GetScoreboard —— 总排行榜（30 秒 Redis 缓存）
func GetScoreboard(c *gin.Context) {
	entries, err := services.GetCachedLeaderboard()
	if err != nil {
		utils.Error(c, 5000, "排行榜查询失败")
		return
	}
	utils.Success(c, "success", gin.H{
		"total":   len(entries),
		"entries": entries,
	})
}

// GetTeamScore —— 当前用户所在队伍的总分与计分流水
func GetTeamScore(c *gin.Context) {
	team, err := services.TeamOfUser(currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "success", gin.H{
		"team_id":   team.ID,
		"team_name": team.TeamName,
		"score":     services.TeamTotal(team.ID),
	})
}

package services

import (
	"encoding/json"
	"log"
	"time"

	"NovaCTF/database"
	"NovaCTF/models"
	"gorm.io/gorm"
)

const leaderboardCacheKey = "scoreboard:overall"

// LeaderboardEntry 排行榜单行
type LeaderboardEntry struct {
	Rank     uint   `json:"rank"`
	TeamID   uint32 `json:"team_id"`
	TeamName string `json:"team_name"`
	Score    int64  `json:"score"`
}

// ProjectLeaderboard 从计分流水重算排行榜。
// 无流水的队伍按 0 分计入；按分数降序、同名分队伍名升序；
// 密集排名：同分共享名次，下一档分数名次只 +1。
func ProjectLeaderboard() ([]LeaderboardEntry, error) {
	type row struct {
		ID       uint32
		TeamName string
		Score    int64
	}
	var rows []row
	err := database.DB.Model(&models.Team{}).
		Select("novactf_team.id, novactf_team.team_name, COALESCE(SUM(e.delta), 0) AS score").
		Joins("LEFT JOIN novactf_score_event e ON e.team_id = novactf_team.id").
		Group("novactf_team.id, novactf_team.team_name").
		Order("score DESC, team_name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(rows))
	var rank uint
	var lastScore int64
	haveLast := false
	for _, r := range rows {
		if !haveLast || r.Score != lastScore {
			rank++
			lastScore = r.Score
			haveLast = true
		}
		entries = append(entries, LeaderboardEntry{
			Rank:     rank,
			TeamID:   r.ID,
			TeamName: r.TeamName,
			Score:    r.Score,
		})
	}
	return entries, nil
}

// GetCachedLeaderboard 优先读 Redis 缓存，未命中时重算并回填
func GetCachedLeaderboard() ([]LeaderboardEntry, error) {
	if cached, err := database.RDB.Get(database.Ctx, leaderboardCacheKey).Result(); err == nil {
		var entries []LeaderboardEntry
		if json.Unmarshal([]byte(cached), &entries) == nil {
			return entries, nil
		}
	}

	entries, err := ProjectLeaderboard()
	if err != nil {
		return nil, err
	}
	if buf, err := json.Marshal(entries); err == nil {
		database.RDB.Set(database.Ctx, leaderboardCacheKey, buf, 30*time.Second)
	}
	return entries, nil
}

// InvalidateLeaderboardCache 计分流水变化后清空排行榜相关缓存键
func InvalidateLeaderboardCache() {
	keys, err := database.RDB.Keys(database.Ctx, "scoreboard:*").Result()
	if err == nil && len(keys) > 0 {
		database.RDB.Del(database.Ctx, keys...)
	}
}

// BroadcastLeaderboard 重算排行榜并推送给订阅者，在每次计分写入提交后调用
func BroadcastLeaderboard() {
	InvalidateLeaderboardCache()
	entries, err := ProjectLeaderboard()
	if err != nil {
		log.Printf("Failed to project leaderboard: %v", err)
		return
	}
	Publish(TopicLeaderboard, "leaderboard.update", entries)
}

func teamTotalTx(tx *gorm.DB, teamID uint32) int64 {
	var total *int64
	tx.Model(&models.ScoreEvent{}).
		Where("team_id = ?", teamID).
		Select("SUM(delta)").Scan(&total)
	if total == nil {
		return 0
	}
	return *total
}

// TeamTotal 队伍当前总分，即该队所有流水 delta 之和
func TeamTotal(teamID uint32) int64 {
	return teamTotalTx(database.DB, teamID)
}

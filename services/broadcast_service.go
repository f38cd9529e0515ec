package services

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"NovaCTF/database"
	"NovaCTF/models"
	"github.com/google/uuid"
)

// 广播主题：排行榜为全局单主题，AD/KotH 按题目分主题
const TopicLeaderboard = "leaderboard"

func TopicADStatus(challengeID uint32) string {
	return fmt.Sprintf("ad.status.%d", challengeID)
}

func TopicKothStatus(challengeID uint32) string {
	return fmt.Sprintf("koth.status.%d", challengeID)
}

type broadcastMessage struct {
	ID      string      `json:"id"`
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
	At      time.Time   `json:"at"`
}

// Publish 向 Redis 频道推送一条消息。
// 尽力而为：发布失败只记日志，绝不影响已提交的业务事务。
func Publish(topic string, msgType string, payload interface{}) {
	buf, err := json.Marshal(broadcastMessage{
		ID:      uuid.New().String(),
		Type:    msgType,
		Payload: payload,
		At:      time.Now(),
	})
	if err != nil {
		log.Printf("Failed to marshal broadcast payload for %s: %v", topic, err)
		return
	}
	if err := database.RDB.Publish(database.Ctx, topic, buf).Err(); err != nil {
		log.Printf("Failed to publish to %s: %v", topic, err)
	}
}

// ADStatusRow AD 服务状态快照单行
type ADStatusRow struct {
	TeamID      uint32     `json:"team_id"`
	TeamName    string     `json:"team_name"`
	Status      string     `json:"status"`
	EndpointURL string     `json:"endpoint_url"`
	LastCheckAt *time.Time `json:"last_check_at"`
}

// CollectADStatus 汇总某题目全部实例的当前状态
func CollectADStatus(challengeID uint32) []ADStatusRow {
	type row struct {
		TeamID      uint32
		TeamName    string
		Status      string
		EndpointURL string
		LastCheckAt *time.Time
	}
	var rows []row
	database.DB.Model(&models.TeamServiceInstance{}).
		Select("novactf_service_instance.team_id, t.team_name, novactf_service_instance.status, novactf_service_instance.endpoint_url, novactf_service_instance.last_check_at").
		Joins("JOIN novactf_team t ON t.id = novactf_service_instance.team_id").
		Where("novactf_service_instance.challenge_id = ?", challengeID).
		Order("t.team_name ASC").
		Scan(&rows)

	result := make([]ADStatusRow, 0, len(rows))
	for _, r := range rows {
		result = append(result, ADStatusRow(r))
	}
	return result
}

// BroadcastADStatus 推送 AD 服务状态快照
func BroadcastADStatus(challengeID uint32) {
	Publish(TopicADStatus(challengeID), "status.update", CollectADStatus(challengeID))
}

// BroadcastAttackEvent 推送单条攻击事件
func BroadcastAttackEvent(ev *models.AttackEvent) {
	Publish(TopicADStatus(ev.ChallengeID), "attack.event", map[string]interface{}{
		"id":               ev.ID,
		"attacker_team_id": ev.AttackerTeamID,
		"victim_team_id":   ev.VictimTeamID,
		"tick":             ev.Tick,
		"points_awarded":   ev.PointsAwarded,
		"created_at":       ev.CreatedAt,
	})
}

// BroadcastKothUpdate 推送 KotH 占领变更
func BroadcastKothUpdate(ev *models.OwnershipEvent) {
	Publish(TopicKothStatus(ev.ChallengeID), "koth.update", map[string]interface{}{
		"challenge_id":  ev.ChallengeID,
		"owner_team_id": ev.OwnerTeamID,
		"from_ts":       ev.FromTs,
		"to_ts":         ev.ToTs,
	})
}

package models

import (
	"time"
)

// AttackEvent 一次成功的令牌夺取。
// (challenge_id, token_hash) 唯一约束是重放防线：并发提交同一令牌时由数据库仲裁，只有一条能落库。
type AttackEvent struct {
	ID             uint64    `gorm:"primarykey"`
	AttackerTeamID uint32    `gorm:"not null;index"`
	VictimTeamID   uint32    `gorm:"not null"`
	ChallengeID    uint32    `gorm:"not null;uniqueIndex:uniq_token_redeem"`
	Tick           int64     `gorm:"not null"`
	TokenHash      string    `gorm:"size:64;not null;uniqueIndex:uniq_token_redeem"`
	PointsAwarded  int       `gorm:"default:0"`
	CreatedAt      time.Time `gorm:"index"`
}

func (AttackEvent) TableName() string {
	return "novactf_attack_event"
}

package models

import (
	"time"
)

// DefenseToken 防御令牌：某队伍在某 Tick 服务在线的凭据。
// 被对手夺取并提交即计一次攻击得分；令牌单次有效，
// 重放判定不在本表而是通过 AttackEvent 的 (challenge, token_hash) 唯一约束完成。
type DefenseToken struct {
	ID          uint64  `gorm:"primarykey"`
	TeamID      uint32  `gorm:"not null;uniqueIndex:uniq_token_per_tick"`
	ChallengeID uint32  `gorm:"not null;uniqueIndex:uniq_token_per_tick"`
	InstanceID  *uint64 ``
	Tick        int64   `gorm:"not null;uniqueIndex:uniq_token_per_tick"`
	Token       string  `gorm:"size:128;index"`
	MintedAt    time.Time
	ExpiresAt   time.Time
}

func (DefenseToken) TableName() string {
	return "novactf_defense_token"
}

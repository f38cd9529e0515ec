package models

import (
	"time"
)

// RoundTick 每次派发的 (challenge, tick) 执行记录。
// 唯一约束即幂等键：重复派发同一 Tick 时插入失败，直接跳过。
type RoundTick struct {
	ID          uint64 `gorm:"primarykey"`
	ChallengeID uint32 `gorm:"not null;uniqueIndex:uniq_round_tick"`
	TickIndex   int64  `gorm:"not null;uniqueIndex:uniq_round_tick"`
	StartedAt   time.Time
	FinishedAt  *time.Time
}

func (RoundTick) TableName() string {
	return "novactf_round_tick"
}

package models

import (
	"time"
)

// OwnershipEvent KotH 的占领区间 [from_ts, to_ts)。
// 不变式：同一题目任意时刻最多只有一条 to_ts 为空的开放区间，
// 由部分唯一索引与 Tick 事务内的状态机共同保证。
type OwnershipEvent struct {
	ID          uint64     `gorm:"primarykey"`
	ChallengeID uint32     `gorm:"not null;index;uniqueIndex:uniq_open_interval,where:to_ts IS NULL"`
	OwnerTeamID uint32     `gorm:"not null"`
	FromTs      time.Time  `gorm:"not null;index"`
	ToTs        *time.Time ``
	// PointsAwarded 该区间内累计发放的占领分
	PointsAwarded int `gorm:"default:0"`
}

func (OwnershipEvent) TableName() string {
	return "novactf_ownership_event"
}

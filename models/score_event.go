package models

import (
	"time"
)

type ScoreEventType string

const (
	ScoreTypeSolve           ScoreEventType = "solve"
	ScoreTypeFirstBlood      ScoreEventType = "first_blood"
	ScoreTypeBonus           ScoreEventType = "bonus"
	ScoreTypeADDefenseUptime ScoreEventType = "ad_defense_uptime"
	ScoreTypeADAttackSuccess ScoreEventType = "ad_attack_success"
	ScoreTypeKothHold        ScoreEventType = "koth_hold"
)

// ScoreEvent 只追加的计分流水，队伍当前总分永远是 SUM(delta) 的派生值。
// 改分通过追加补偿事件完成，任何地方都不直接存总分。
type ScoreEvent struct {
	ID          uint64         `gorm:"primarykey"`
	TeamID      uint32         `gorm:"not null;index"`
	UserID      *uint32        ``
	ChallengeID *uint32        ``
	Type        ScoreEventType `gorm:"size:32;not null"`
	Delta       int            `gorm:"not null"`
	// Metadata 事件附加信息（JSON 串），如 tick 序号、受害队伍等
	Metadata  string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"index"`
}

func (ScoreEvent) TableName() string {
	return "novactf_score_event"
}

package models

import (
	"time"
)

type Submission struct {
	ID          uint64 `gorm:"primarykey"`
	ChallengeID uint32 `gorm:"not null;index:idx_sub_challenge;uniqueIndex:uniq_correct_solve,where:is_correct"`
	UserID      uint32 `gorm:"not null"`
	TeamID      uint32 `gorm:"not null;index:idx_sub_team;uniqueIndex:uniq_correct_solve,where:is_correct"`
	IsCorrect   bool
	// FlagPrefix 仅保留提交内容前缀用于审计，不落完整 Flag
	FlagPrefix  string    `gorm:"size:16"`
	IPAddress   string    `gorm:"size:45"`
	UserAgent   string    `gorm:"size:400"`
	SubmittedAt time.Time `gorm:"index"`
}

func (Submission) TableName() string {
	return "novactf_submission"
}

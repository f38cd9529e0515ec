package models

import "time"

type SnapshotReason string

const (
	SnapshotReasonFreeze     SnapshotReason = "freeze"
	SnapshotReasonModeration SnapshotReason = "moderation"
	SnapshotReasonManual     SnapshotReason = "manual"
)

// ChallengeSnapshot 题目计分参数的管理快照，仅作留档，不影响实时计分
type ChallengeSnapshot struct {
	ID            uint64 `gorm:"primarykey"`
	ChallengeID   uint32 `gorm:"index;not null"`
	ChallengeName string `gorm:"size:100;not null"`
	ScoringModel  ScoringModel
	PointsMin     int
	PointsMax     int
	DecayK        float64
	ReleasedAt    *time.Time
	Reason        SnapshotReason `gorm:"size:16;default:'manual'"`
	CreatedAt     time.Time
}

func (ChallengeSnapshot) TableName() string {
	return "novactf_challenge_snapshot"
}

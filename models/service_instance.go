package models

import (
	"time"
)

type InstanceStatus string

const (
	InstancePending InstanceStatus = "pending"
	InstanceRunning InstanceStatus = "running"
	InstanceError   InstanceStatus = "error"
	InstanceStopped InstanceStatus = "stopped"
)

// TeamServiceInstance 队伍在 AD/KotH 题目下的服务实例。
// 实例的创建与销毁由编排器负责，Tick 引擎只读取实例并回写 last_check_at/status。
type TeamServiceInstance struct {
	ID          uint64         `gorm:"primarykey"`
	TeamID      uint32         `gorm:"not null;index:idx_inst_chal_team"`
	ChallengeID uint32         `gorm:"not null;index:idx_inst_chal_team"`
	Status      InstanceStatus `gorm:"size:16;default:'pending'"`
	EndpointURL string         `gorm:"size:255"`
	// ServiceID Docker Swarm 服务 ID，外部编排时为空
	ServiceID   string `gorm:"size:128"`
	CreatedAt   time.Time
	LastCheckAt *time.Time
}

func (TeamServiceInstance) TableName() string {
	return "novactf_service_instance"
}

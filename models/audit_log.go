package models

import (
	"time"
)

// AuditLog 管理操作审计，哈希链防篡改：
// hash = sha256(prev_hash || 规范化 JSON 字段)，校验时线性重算比对。
type AuditLog struct {
	ID          uint64  `gorm:"primarykey"`
	ActorUserID *uint32 ``
	Action      string  `gorm:"size:200;not null"`
	TargetType  string  `gorm:"size:120;not null;index:idx_audit_target"`
	TargetID    string  `gorm:"size:120;not null;index:idx_audit_target"`
	Data        string  `gorm:"type:text"`
	PrevHash    string  `gorm:"size:64"`
	Hash        string  `gorm:"size:64;not null"`
	CreatedAt   time.Time `gorm:"index"`
}

func (AuditLog) TableName() string {
	return "novactf_audit_log"
}

package services

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"NovaCTF/database"
	"NovaCTF/models"
	"gorm.io/gorm"
)

// auditDigestFields 参与哈希的字段集合。
// 用结构化 JSON 编码，字段顺序由结构体定义固定，避免拼接串的歧义。
type auditDigestFields struct {
	ActorUserID *uint32 `json:"actor_user_id"`
	Action      string  `json:"action"`
	TargetType  string  `json:"target_type"`
	TargetID    string  `json:"target_id"`
	Data        string  `json:"data"`
	CreatedAt   string  `json:"created_at"`
}

func auditHash(prevHash string, entry *models.AuditLog) string {
	buf, _ := json.Marshal(auditDigestFields{
		ActorUserID: entry.ActorUserID,
		Action:      entry.Action,
		TargetType:  entry.TargetType,
		TargetID:    entry.TargetID,
		Data:        entry.Data,
		CreatedAt:   entry.CreatedAt.UTC().Format(time.RFC3339Nano),
	})
	sum := sha256.Sum256(append([]byte(prevHash), buf...))
	return hex.EncodeToString(sum[:])
}

// AppendAudit 追加一条审计记录并接入哈希链。
// 链尾读取与新行写入同事务，防止并发追加产生分叉。
func AppendAudit(actorUserID *uint32, action, targetType, targetID string, data map[string]interface{}) {
	payload := ""
	if data != nil {
		if buf, err := json.Marshal(data); err == nil {
			payload = string(buf)
		}
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		prevHash := ""
		var last models.AuditLog
		err := lockForUpdate(tx).Order("id DESC").First(&last).Error
		if err == nil {
			prevHash = last.Hash
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		entry := &models.AuditLog{
			ActorUserID: actorUserID,
			Action:      action,
			TargetType:  targetType,
			TargetID:    targetID,
			Data:        payload,
			PrevHash:    prevHash,
			CreatedAt:   time.Now(),
		}
		entry.Hash = auditHash(prevHash, entry)
		return tx.Create(entry).Error
	})
	if err != nil {
		// 审计失败不阻断业务操作本身
		log.Printf("Failed to append audit log %s %s:%s: %v", action, targetType, targetID, err)
	}
}

// VerifyAuditChain 线性扫描重算整条哈希链，返回首个被篡改的记录 ID
func VerifyAuditChain() (bool, uint64, error) {
	var logs []models.AuditLog
	if err := database.DB.Order("id ASC").Find(&logs).Error; err != nil {
		return false, 0, err
	}

	prevHash := ""
	for i := range logs {
		entry := &logs[i]
		if entry.PrevHash != prevHash {
			return false, entry.ID, nil
		}
		if auditHash(prevHash, entry) != entry.Hash {
			return false, entry.ID, nil
		}
		prevHash = entry.Hash
	}
	return true, 0, nil
}

// AuditTargetID 统一数字主键到审计目标 ID 的转换
func AuditTargetID(id uint32) string {
	return fmt.Sprintf("%d", id)
}

package services

import (
	"testing"

	"NovaCTF/database"
	"NovaCTF/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditChainAppendAndVerify(t *testing.T) {
	setupTestEnv(t)

	actor := uint32(1)
	AppendAudit(&actor, "challenge.create", "challenge", "1", map[string]interface{}{"name": "web-1"})
	AppendAudit(&actor, "challenge.update", "challenge", "1", map[string]interface{}{"fields": 2})
	AppendAudit(nil, "system.freeze", "scoreboard", "overall", nil)

	var logs []models.AuditLog
	require.NoError(t, database.DB.Order("id ASC").Find(&logs).Error)
	require.Len(t, logs, 3)

	// 每条的 prev_hash 指向前一条的 hash，首条为空串
	assert.Empty(t, logs[0].PrevHash)
	assert.Equal(t, logs[0].Hash, logs[1].PrevHash)
	assert.Equal(t, logs[1].Hash, logs[2].PrevHash)

	ok, badID, err := VerifyAuditChain()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Zero(t, badID)
}

func TestAuditChainDetectsTampering(t *testing.T) {
	setupTestEnv(t)

	actor := uint32(1)
	AppendAudit(&actor, "challenge.create", "challenge", "1", map[string]interface{}{"points": 500})
	AppendAudit(&actor, "challenge.update", "challenge", "1", nil)

	// 事后篡改已落库的记录内容
	var first models.AuditLog
	require.NoError(t, database.DB.Order("id ASC").First(&first).Error)
	require.NoError(t, database.DB.Model(&first).Update("data", `{"points":9999}`).Error)

	ok, badID, err := VerifyAuditChain()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, first.ID, badID)
}

func TestAuditChainEmptyIsValid(t *testing.T) {
	setupTestEnv(t)

	ok, badID, err := VerifyAuditChain()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Zero(t, badID)
}

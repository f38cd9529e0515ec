package utils

import (
	"crypto/rand"
	"encoding/base64"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateInvitationCode 生成指定长度的随机邀请码
func GenerateInvitationCode(length int) string {
	var sb strings.Builder
	sb.Grow(length)
	for i := 0; i < length; i++ {
		n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		sb.WriteByte(charset[n.Int64()])
	}
	return sb.String()
}

// GenerateDefenseToken 生成防御令牌。
// 32 字节密码学随机数，URL-safe 编码，对手不可猜测。
func GenerateDefenseToken() string {
	buf := make([]byte, 32)
	_, _ = rand.Read(buf)
	return base64.RawURLEncoding.EncodeToString(buf)
}

// GenerateServiceSuffix 生成服务名后缀，避免编排器重建同名服务时冲突
func GenerateServiceSuffix() string {
	return strings.Replace(uuid.New().String(), "-", "", -1)[:12]
}

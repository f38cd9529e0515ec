package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"NovaCTF/config"
)

// HmacFlag 计算归一化（去首尾空白）后 Flag 的带密钥摘要，存库和比对都走这里
func HmacFlag(flag string) string {
	normalized := strings.TrimSpace(flag)
	mac := hmac.New(sha256.New, []byte(config.C.FlagPepper))
	mac.Write([]byte(normalized))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyFlag 恒定时间比较，避免通过响应时长逐位猜测 Flag
func VerifyFlag(flagHmac string, submitted string) bool {
	return hmac.Equal([]byte(HmacFlag(submitted)), []byte(flagHmac))
}

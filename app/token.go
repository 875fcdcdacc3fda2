package app

import (
	"crypto/rand"
	"encoding/hex"
)

// NewToken 一次性邀请 token（16 字节 hex）
func NewToken() string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

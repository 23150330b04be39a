package crypto

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Cost bcrypt 代价，测试中可调低
var Cost = bcrypt.DefaultCost

// HashPassword 生成 bcrypt 哈希（60 字符）
func HashPassword(pwd string) (string, error) {
	bs, err := bcrypt.GenerateFromPassword([]byte(pwd), Cost)
	if err != nil {
		return "", err
	}
	return string(bs), nil
}

// VerifyPassword 仅接受 $2a$ / $2b$ / $2y$ 开头的 bcrypt 哈希
func VerifyPassword(plain, stored string) bool {
	if !strings.HasPrefix(stored, "$2a$") && !strings.HasPrefix(stored, "$2b$") && !strings.HasPrefix(stored, "$2y$") {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(plain)) == nil
}

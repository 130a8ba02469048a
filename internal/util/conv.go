package util

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"strings"
)

// MustParseUint 将字符串转换为无符号整数，解析失败时返回 0
func MustParseUint(s string) uint {
	id, _ := strconv.ParseUint(s, 10, 32)
	return uint(id)
}

// CountTokens 粗略的词数统计（按空白切分），用于评分降级时的长度启发式
func CountTokens(s string) int {
	return len(strings.Fields(s))
}

// GenerateRandomString 生成指定长度的随机十六进制字符串，用于文件名去重
func GenerateRandomString(n int) string {
	buf := make([]byte, (n+1)/2)
	if _, err := rand.Read(buf); err != nil {
		return strconv.FormatInt(int64(n), 36)
	}
	return hex.EncodeToString(buf)[:n]
}

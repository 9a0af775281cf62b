package id

import (
	"github.com/google/uuid"
)

// New 生成新的运行ID（UUID 字符串）
func New() string {
	return uuid.New().String()
}

// Short 返回ID的前8位，用于终端输出
func Short(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

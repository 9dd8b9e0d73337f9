package id

import (
	"github.com/google/uuid"
)

// New 生成按时间有序的 UUIDv7，保证同一毫秒内也不重复
func New() string {
	v, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return v.String()
}

package utils

import "github.com/google/uuid"

// ValidUUID 只接受标准 36 位格式，与数据库 uuid 列的常见写法一致
func ValidUUID(s string) bool {
	return len(s) == 36 && uuid.Validate(s) == nil
}

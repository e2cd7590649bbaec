// Package principal 描述当前请求的调用者身份
package principal

import (
	"learnhub/internal/pkg/apperr"

	"github.com/gin-gonic/gin"
)

const (
	RoleUser  = 1
	RoleAdmin = 9
)

const ginKey = "principal"

// Principal 调用者身份
type Principal struct {
	UserID string
	Role   int
}

func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

// RequireAdmin 非管理员返回 Forbidden
func RequireAdmin(p Principal) error {
	if !p.IsAdmin() {
		return apperr.Forbidden("admin permission required")
	}
	return nil
}

// Set 写入 gin 上下文，由认证中间件调用
func Set(c *gin.Context, p Principal) {
	c.Set(ginKey, p)
	c.Set("userID", p.UserID)
	c.Set("role", p.Role)
}

// From 从 gin 上下文读取调用者
func From(c *gin.Context) (Principal, bool) {
	v, ok := c.Get(ginKey)
	if !ok {
		return Principal{}, false
	}
	p, ok := v.(Principal)
	return p, ok
}

package response

import (
	"learnhub/internal/pkg/apperr"
	"learnhub/pkg/utils"

	"github.com/gin-gonic/gin"
)

// UUIDParam 读取路径参数并校验 UUID 格式，不合法时直接返回 400
func UUIDParam(c *gin.Context, name string) (string, bool) {
	id := c.Param(name)
	if !utils.ValidUUID(id) {
		FromError(c, apperr.Validation("invalid "+name), 0)
		return "", false
	}
	return id, true
}

// UUIDQuery 读取可选的查询参数，为空时返回空串
func UUIDQuery(c *gin.Context, name string) (string, bool) {
	id := c.Query(name)
	if id != "" && !utils.ValidUUID(id) {
		FromError(c, apperr.Validation("invalid "+name), 0)
		return "", false
	}
	return id, true
}

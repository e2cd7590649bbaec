package response

import (
	"net/http"

	"learnhub/internal/pkg/apperr"
	"learnhub/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`    // 业务码
	Message string      `json:"message"` // 提示信息
	Data    interface{} `json:"data"`    // 数据
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeSuccess,
		Message: "success",
		Data:    data,
	})
}

// Error 错误响应
func Error(c *gin.Context, httpCode int, errCode int, msg string) {
	c.JSON(httpCode, Response{
		Code:    errCode,
		Message: msg,
		Data:    nil,
	})
}

// Fail 业务失败响应 (HTTP 200, 业务码非 0)
func Fail(c *gin.Context, errCode int, msg string) {
	c.JSON(http.StatusOK, Response{
		Code:    errCode,
		Message: msg,
		Data:    nil,
	})
}

// FromError 根据业务错误类别输出响应
// defaultCode 用于 NotFound 等需要区分模块的业务码，传 0 时使用通用码
func FromError(c *gin.Context, err error, defaultCode int) {
	httpCode, errCode := StatusOf(err)
	if defaultCode != 0 && apperr.KindOf(err) == apperr.KindNotFound {
		errCode = defaultCode
	}
	if httpCode >= http.StatusInternalServerError {
		logger.Log.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}
	Error(c, httpCode, errCode, apperr.Message(err))
}

// StatusOf 返回错误对应的 HTTP 状态码和业务码
func StatusOf(err error) (int, int) {
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		return http.StatusNotFound, CodeError
	case apperr.KindForbidden:
		return http.StatusForbidden, ErrNoPermission
	case apperr.KindInvalidState:
		return http.StatusConflict, ErrOrderState
	case apperr.KindDuplicatePurchase:
		return http.StatusConflict, ErrDuplicatePurchase
	case apperr.KindValidation:
		return http.StatusBadRequest, ErrInvalidParam
	case apperr.KindStorage:
		return http.StatusServiceUnavailable, ErrServiceUnavailable
	default:
		return http.StatusInternalServerError, ErrServerInternal
	}
}

package common

import (
	"errors"

	commonHandler "learnhub/internal/pkg/common"
	"learnhub/internal/pkg/middleware"
	"learnhub/internal/pkg/registry"
	"learnhub/internal/pkg/uploader"
	"learnhub/pkg/logger"

	"github.com/gin-gonic/gin"
)

// CommonModule 通用功能模块
type CommonModule struct{}

func init() {
	registry.Register(&CommonModule{})
}

func (m *CommonModule) Name() string {
	return "common"
}

func (m *CommonModule) Priority() int {
	return 100 // 最后初始化
}

func (m *CommonModule) Init(ctx *registry.ModuleContext) error {
	cfg := ctx.Config.OSS

	var u uploader.Uploader
	oss, err := uploader.NewAliyunOSSUploader(cfg)
	switch {
	case err == nil:
		u = oss
	case errors.Is(err, uploader.ErrNotConfigured):
		logger.Log.Warn("oss not configured, /upload disabled")
	default:
		return err
	}

	setupRoutes(ctx.Router, commonHandler.NewUploadHandler(u, cfg.MaxUploadMB))
	return nil
}

func setupRoutes(r *gin.Engine, h *commonHandler.UploadHandler) {
	// 文件上传接口
	r.POST("/upload", middleware.AuthMiddleware(), middleware.AdminMiddleware(), h.UploadFile)
}

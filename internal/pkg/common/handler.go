package handler

import (
	"errors"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"learnhub/internal/pkg/uploader"
	"learnhub/pkg/logger"
	"learnhub/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	uploadDir         = "uploads"
	uploadConcurrency = 5
)

var allowedImageExt = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true,
}

// UploadHandler 图片上传（课程封面、收款码）
type UploadHandler struct {
	uploader uploader.Uploader
	maxSize  int64
	now      func() time.Time
}

// NewUploadHandler uploader 为 nil 时接口返回 503
func NewUploadHandler(u uploader.Uploader, maxSizeMB int) *UploadHandler {
	if maxSizeMB <= 0 {
		maxSizeMB = 5
	}
	return &UploadHandler{uploader: u, maxSize: int64(maxSizeMB) << 20, now: time.Now}
}

// UploadFile 上传文件 (支持批量)
// @Summary 上传图片到 OSS (支持批量)
// @Tags Common
// @Security Bearer
// @Accept multipart/form-data
// @Produce json
// @Param files formData file true "Files"
// @Success 200 {object} response.Response{data=[]string} "URLs"
// @Router /upload [post]
func (h *UploadHandler) UploadFile(c *gin.Context) {
	if h.uploader == nil {
		response.Error(c, http.StatusServiceUnavailable, response.ErrServiceUnavailable, "uploader not configured")
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "invalid form data")
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "no files uploaded")
		return
	}
	for _, f := range files {
		if err := h.check(f); err != nil {
			response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
			return
		}
	}

	// 按索引写入结果，保证顺序
	urls := make([]string, len(files))
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.SetLimit(uploadConcurrency)
	for i, f := range files {
		g.Go(func() error {
			src, err := f.Open()
			if err != nil {
				return err
			}
			defer src.Close()

			key := uploader.ObjectKey(uploadDir, f.Filename, h.now())
			url, err := h.uploader.Upload(ctx, key, src, f.Header.Get("Content-Type"))
			if err != nil {
				return err
			}
			urls[i] = url
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Log.Error("upload failed", zap.Int("files", len(files)), zap.Error(err))
		response.Error(c, http.StatusBadGateway, response.ErrServerInternal, "upload failed")
		return
	}

	response.Success(c, urls)
}

func (h *UploadHandler) check(f *multipart.FileHeader) error {
	if !allowedImageExt[strings.ToLower(filepath.Ext(f.Filename))] {
		return errors.New("only png, jpg, gif and webp images are allowed: " + f.Filename)
	}
	if f.Size > h.maxSize {
		return errors.New("file too large: " + f.Filename)
	}
	return nil
}

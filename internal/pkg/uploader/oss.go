package uploader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"learnhub/internal/pkg/config"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/google/uuid"
)

// ErrNotConfigured 未配置 OSS
var ErrNotConfigured = errors.New("oss uploader not configured")

// Uploader 对象存储
type Uploader interface {
	// Upload 上传对象并返回公开访问地址
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
}

type AliyunOSSUploader struct {
	bucket  *oss.Bucket
	baseURL string
}

// NewAliyunOSSUploader endpoint 或 bucket 为空时返回 ErrNotConfigured
func NewAliyunOSSUploader(cfg config.OSSConfig) (*AliyunOSSUploader, error) {
	if cfg.Endpoint == "" || cfg.BucketName == "" {
		return nil, ErrNotConfigured
	}
	client, err := oss.New(cfg.Endpoint, cfg.AccessKeyID, cfg.AccessKeySecret)
	if err != nil {
		return nil, err
	}
	bucket, err := client.Bucket(cfg.BucketName)
	if err != nil {
		return nil, err
	}
	return &AliyunOSSUploader{
		bucket:  bucket,
		baseURL: PublicBaseURL(cfg),
	}, nil
}

func (u *AliyunOSSUploader) Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	opts := []oss.Option{oss.WithContext(ctx)}
	if contentType != "" {
		opts = append(opts, oss.ContentType(contentType))
	}
	if err := u.bucket.PutObject(key, r, opts...); err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return u.baseURL + "/" + key, nil
}

// PublicBaseURL 配置了 CDN 域名时优先使用，否则为 bucket 默认域名
// 假设 bucket 为公共读
func PublicBaseURL(cfg config.OSSConfig) string {
	if cfg.PublicURL != "" {
		return strings.TrimRight(cfg.PublicURL, "/")
	}
	endpoint := strings.TrimPrefix(strings.TrimPrefix(cfg.Endpoint, "https://"), "http://")
	return fmt.Sprintf("https://%s.%s", cfg.BucketName, endpoint)
}

// ObjectKey 生成对象路径：<dir>/YYYYMMDD/<uuid><ext>
func ObjectKey(dir, filename string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return path.Join(dir, now.Format("20060102"), uuid.NewString()+ext)
}

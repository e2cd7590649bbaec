package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"learnhub/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	codeTTL        = 5 * time.Minute
	resendInterval = time.Minute
)

// ErrTooFrequent 发送过于频繁
var ErrTooFrequent = errors.New("please wait before sending again")

type OTPService interface {
	Send(ctx context.Context, mobile string) (string, error)
	Verify(ctx context.Context, mobile, code string) bool
}

type otpService struct {
	rdb       *redis.Client
	fixedCode string
}

// NewOTPService fixedCode 非空时总是下发该验证码（测试环境）
func NewOTPService(rdb *redis.Client, fixedCode string) OTPService {
	return &otpService{rdb: rdb, fixedCode: fixedCode}
}

func key(mobile string) string {
	return fmt.Sprintf("otp:%s", mobile)
}

// Send 生成并发送验证码
// 真实场景下应调用短信服务商接口，这里存入 Redis 并打印到日志
func (s *otpService) Send(ctx context.Context, mobile string) (string, error) {
	// 1. 频率限制：剩余有效期大于 4 分钟说明刚发不久
	ttl, err := s.rdb.TTL(ctx, key(mobile)).Result()
	if err == nil && ttl > codeTTL-resendInterval {
		return "", ErrTooFrequent
	}

	// 2. 生成验证码
	code := s.fixedCode
	if code == "" {
		n, err := rand.Int(rand.Reader, big.NewInt(1000000))
		if err != nil {
			return "", err
		}
		code = fmt.Sprintf("%06d", n.Int64())
	}

	// 3. 存入 Redis
	if err := s.rdb.Set(ctx, key(mobile), code, codeTTL).Err(); err != nil {
		return "", err
	}

	// 4. 发送 (Mock: 打印日志)
	logger.Log.Info("otp sent", zap.String("mobile", mobile), zap.String("code", code))
	return code, nil
}

// Verify 验证验证码，成功后立即删除，防止重放
func (s *otpService) Verify(ctx context.Context, mobile, code string) bool {
	val, err := s.rdb.Get(ctx, key(mobile)).Result()
	if err != nil || val != code {
		return false
	}
	// 并发校验时只有一个请求能删除成功
	n, err := s.rdb.Del(ctx, key(mobile)).Result()
	return err == nil && n == 1
}

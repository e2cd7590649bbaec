package middleware

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"learnhub/pkg/logger"
	"learnhub/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// 固定窗口计数：首次 INCR 时设置过期时间
var fixedWindowScript = redis.NewScript(`
local n = redis.call('INCR', KEYS[1])
if n == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return n
`)

// IPRateLimiter 进程内限流器，Redis 不可用时兜底
type IPRateLimiter struct {
	ips map[string]*rate.Limiter
	mu  sync.Mutex
	r   rate.Limit
	b   int
}

// NewIPRateLimiter 创建一个新的进程内限流器
// r: 每秒允许的请求数 (QPS)
// b: 桶的大小 (Burst)
func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	return &IPRateLimiter{
		ips: make(map[string]*rate.Limiter),
		r:   r,
		b:   b,
	}
}

// GetLimiter 获取指定 key 的限流器
func (i *IPRateLimiter) GetLimiter(key string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()

	limiter, exists := i.ips[key]
	if !exists {
		limiter = rate.NewLimiter(i.r, i.b)
		i.ips[key] = limiter
	}
	return limiter
}

// RateLimiter 基于 Redis 的共享计数限流，多实例之间共享窗口
type RateLimiter struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
	local  *IPRateLimiter
}

// NewRateLimiter 每个 key 在 window 内最多 limit 次，rdb 为 nil 时只使用进程内限流
func NewRateLimiter(rdb *redis.Client, limit int, window time.Duration) *RateLimiter {
	perSecond := rate.Limit(float64(limit) / window.Seconds())
	return &RateLimiter{
		rdb:    rdb,
		limit:  limit,
		window: window,
		local:  NewIPRateLimiter(perSecond, limit),
	}
}

// Allow 判断 key 本次请求是否放行，nil 限流器总是放行
func (l *RateLimiter) Allow(ctx context.Context, key string) bool {
	if l == nil {
		return true
	}
	if l.rdb != nil {
		n, err := fixedWindowScript.Run(ctx, l.rdb, []string{"ratelimit:" + key}, l.window.Milliseconds()).Int64()
		if err == nil {
			return n <= int64(l.limit)
		}
		logger.Log.Warn("rate limit redis unavailable, using local limiter", zap.Error(err))
	}
	return l.local.GetLimiter(key).Allow()
}

// RateLimitMiddleware 限流中间件，登录用户按用户计数，匿名请求按 IP 计数
func RateLimitMiddleware(l *RateLimiter, scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		subject := c.GetString("userID")
		if subject == "" {
			subject = c.ClientIP()
		}
		if !l.Allow(c.Request.Context(), fmt.Sprintf("%s:%s", scope, subject)) {
			response.Error(c, http.StatusTooManyRequests, response.ErrTooManyRequests, "Too many requests")
			c.Abort()
			return
		}
		c.Next()
	}
}

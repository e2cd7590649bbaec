package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"learnhub/internal/pkg/config"
	"learnhub/internal/pkg/event"
	"learnhub/internal/pkg/middleware"
	"learnhub/internal/pkg/notify"
	"learnhub/pkg/cache"
	"learnhub/pkg/database"
	"learnhub/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ModuleContext 模块初始化所需的上下文
type ModuleContext struct {
	Config      *config.Config
	DB          *gorm.DB
	Redis       *redis.Client
	Router      *gin.Engine
	Cache       cache.CacheService
	Transactor  database.Transactor
	Metrics     *metrics.MetricsCollector
	Notifier    notify.Notifier
	Publisher   event.Publisher
	RateLimiter *middleware.RateLimiter

	mu         sync.RWMutex
	services   map[string]any
	background []func(context.Context) error
}

// Provide 暴露服务给后初始化的模块使用
func (c *ModuleContext) Provide(name string, svc any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.services == nil {
		c.services = make(map[string]any)
	}
	c.services[name] = svc
}

// Lookup 按名称获取已注册的服务
func Lookup[T any](c *ModuleContext, name string) (T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var zero T
	v, ok := c.services[name]
	if !ok {
		return zero, fmt.Errorf("service %q not provided, check module priority", name)
	}
	svc, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("service %q has type %T", name, v)
	}
	return svc, nil
}

// RunBackground 注册后台任务，由 main 在模块初始化完成后统一启动
func (c *ModuleContext) RunBackground(fn func(context.Context) error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.background = append(c.background, fn)
}

// BackgroundTasks 返回已注册的后台任务
func (c *ModuleContext) BackgroundTasks() []func(context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]func(context.Context) error(nil), c.background...)
}

// Module 模块接口
type Module interface {
	// Name 返回模块名称
	Name() string

	// Init 初始化模块（依赖注入、路由注册等）
	Init(ctx *ModuleContext) error

	// Priority 返回初始化优先级（数字越小越先初始化）
	// 例如：catalog 模块需要先于 order 模块初始化
	Priority() int
}

var (
	registryMu     sync.Mutex
	moduleRegistry = make(map[string]Module)
)

// Register 注册模块
func Register(module Module) {
	registryMu.Lock()
	defer registryMu.Unlock()
	moduleRegistry[module.Name()] = module
}

// GetModules 获取按优先级排序的模块
func GetModules() []Module {
	registryMu.Lock()
	defer registryMu.Unlock()

	modules := make([]Module, 0, len(moduleRegistry))
	for _, m := range moduleRegistry {
		modules = append(modules, m)
	}
	sort.SliceStable(modules, func(i, j int) bool {
		if modules[i].Priority() != modules[j].Priority() {
			return modules[i].Priority() < modules[j].Priority()
		}
		return modules[i].Name() < modules[j].Name()
	})
	return modules
}

// InitModules 按优先级初始化所有模块
func InitModules(ctx *ModuleContext) error {
	for _, module := range GetModules() {
		if err := module.Init(ctx); err != nil {
			return fmt.Errorf("init module %s: %w", module.Name(), err)
		}
	}
	return nil
}

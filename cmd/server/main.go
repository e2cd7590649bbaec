package main

// @title LearnHub API
// @version 1.0
// @description 课程与会员售卖平台：课程目录、订单与人工收款确认、授权与学习进度
// @BasePath /
// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "learnhub/docs"
	_ "learnhub/internal/domain/catalog"
	_ "learnhub/internal/domain/common"
	_ "learnhub/internal/domain/license"
	_ "learnhub/internal/domain/order"
	_ "learnhub/internal/domain/progress"
	"learnhub/internal/domain/user"
	userservice "learnhub/internal/domain/user/service"
	"learnhub/internal/pkg/config"
	"learnhub/internal/pkg/event"
	"learnhub/internal/pkg/middleware"
	"learnhub/internal/pkg/notify"
	"learnhub/internal/pkg/registry"
	"learnhub/internal/pkg/worker"
	"learnhub/pkg/cache"
	"learnhub/pkg/database"
	"learnhub/pkg/logger"
	"learnhub/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

func main() {
	config.LoadConfig()
	cfg := config.GlobalConfig

	if err := logger.InitLogger(cfg.App.Env, cfg.App.Debug); err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg); err != nil {
		logger.Log.Fatal("server exited", zap.Error(err))
	}
	logger.Log.Info("server stopped")
}

func run(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.InitDatabase(cfg.Database, cfg.App.Debug)
	if err != nil {
		return err
	}
	rdb, err := database.InitRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer rdb.Close()

	collector := metrics.GetGlobalCollector()

	// 通知：worker 池 + 分发器，接收人解析器在用户模块初始化后设置
	pool := worker.NewWorkerPool(cfg.Notify.Workers, cfg.Notify.QueueSize)
	pool.MaxRetry = cfg.Notify.MaxRetry
	dispatcher := notify.NewDispatcher(pool, nil, buildSenders(cfg),
		notify.WithAdminEmails(cfg.Notify.AdminEmails),
		notify.WithSiteData(map[string]any{
			"SiteName": cfg.App.SiteName,
			"SiteURL":  cfg.App.SiteURL,
		}),
		notify.WithMetrics(collector),
	)

	var (
		publisher event.Publisher = event.NopPublisher{}
		producer  *event.Producer
	)
	if len(cfg.Kafka.Brokers) > 0 {
		producer = event.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, 1024)
		publisher = producer
	} else {
		logger.Log.Info("kafka brokers not configured, order events disabled")
	}

	router := newRouter(cfg, db, rdb, collector)
	moduleCtx := &registry.ModuleContext{
		Config:      &cfg,
		DB:          db,
		Redis:       rdb,
		Router:      router,
		Cache:       cache.NewRedisCache(rdb, "learnhub:"),
		Transactor:  database.NewTransactor(db),
		Metrics:     collector,
		Notifier:    dispatcher,
		Publisher:   publisher,
		RateLimiter: middleware.NewRateLimiter(rdb, cfg.RateLimit.Requests, cfg.RateLimit.Window),
	}
	if err := registry.InitModules(moduleCtx); err != nil {
		return err
	}
	users, err := registry.Lookup[*userservice.Service](moduleCtx, user.ServiceName)
	if err != nil {
		return err
	}
	dispatcher.SetResolver(users)

	// 后台组件：HTTP 关闭后依次停止模块任务、通知队列、事件生产者
	pool.Start(context.Background())

	producerCtx, stopProducer := context.WithCancel(context.Background())
	defer stopProducer()
	producerErr := make(chan error, 1)
	if producer != nil {
		go func() { producerErr <- producer.Run(producerCtx) }()
	} else {
		producerErr <- nil
	}

	tasksCtx, stopTasks := context.WithCancel(context.Background())
	defer stopTasks()
	tasks, tasksCtx := errgroup.WithContext(tasksCtx)
	for _, task := range moduleCtx.BackgroundTasks() {
		tasks.Go(func() error { return task(tasksCtx) })
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	srvErr := make(chan error, 1)
	go func() {
		logger.Log.Info("server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srvErr <- err
		}
		close(srvErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Log.Info("shutdown signal received")
	case err := <-srvErr:
		runErr = err
	case <-tasksCtx.Done():
		logger.Log.Error("background task stopped unexpectedly")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("http server shutdown", zap.Error(err))
	}

	stopTasks()
	if err := tasks.Wait(); err != nil && runErr == nil {
		runErr = err
	}
	pool.Stop()
	stopProducer()
	if err := <-producerErr; err != nil {
		logger.Log.Warn("kafka producer close", zap.Error(err))
	}
	return runErr
}

func newRouter(cfg config.Config, db *gorm.DB, rdb *redis.Client, collector *metrics.MetricsCollector) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)
	r := gin.New()

	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	if len(cfg.Server.AllowOrigins) == 0 || cfg.Server.AllowOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.Server.AllowOrigins
		corsCfg.AllowCredentials = true
	}

	r.Use(
		gin.Recovery(),
		middleware.TraceMiddleware(),
		middleware.LoggerMiddleware(),
		middleware.MetricsMiddleware(collector),
		cors.New(corsCfg),
	)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", healthz(db, rdb))
	if cfg.App.Env != "prod" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
	return r
}

func healthz(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := gin.H{"database": "ok", "redis": "ok"}
		code := http.StatusOK
		if err := database.Ping(ctx, db); err != nil {
			status["database"] = err.Error()
			code = http.StatusServiceUnavailable
		}
		if err := rdb.Ping(ctx).Err(); err != nil {
			status["redis"] = err.Error()
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, status)
	}
}

// buildSenders 按配置启用邮件和推送，开发环境都未配置时只打印日志
func buildSenders(cfg config.Config) []notify.Sender {
	var senders []notify.Sender
	if cfg.SMTP.Host != "" {
		senders = append(senders, notify.WithBreaker(notify.NewEmailSender(cfg.SMTP)))
	}
	if cfg.Push.AppKey != 0 {
		push, err := notify.NewPushSender(cfg.Push)
		if err != nil {
			logger.Log.Warn("push sender disabled", zap.Error(err))
		} else {
			senders = append(senders, notify.WithBreaker(push))
		}
	}
	if len(senders) == 0 && cfg.App.Env == "dev" {
		senders = append(senders, notify.LogSender{})
	}
	return senders
}

package app

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"survey_backend/internal/config"
	"survey_backend/internal/controller"
	"survey_backend/internal/middleware"
	"survey_backend/internal/repository"
	"survey_backend/internal/service"
	"survey_backend/pkg/configwatcher"
	"survey_backend/pkg/database"
	"survey_backend/pkg/logger"
	"survey_backend/pkg/monitoring"
	"survey_backend/pkg/security"
	"survey_backend/pkg/tracing"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	Policy          *service.Policy
	limiter         *security.RateLimiter
	tracer          *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

type repositories struct {
	survey *repository.SurveyRepository
}

type services struct {
	survey  *service.SurveyService
	export  *service.ExportService
	storage *service.StorageService
	events  service.EventPublisher
}

type controllers struct {
	survey *controller.SurveyController
	health *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) applyConfig(cfg *config.Config) {
	for _, cb := range a.configCallbacks {
		cb(cfg)
	}
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		survey: repository.NewSurveyRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.events = service.NewEventPublisher(rdb, cfg.Redis.Channel)
	s.storage = service.NewStorageService(&cfg.Storage)
	s.survey = service.NewSurveyService(repos.survey, s.events, cfg.Survey)
	s.export = service.NewExportService(s.survey, s.storage)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		survey: controller.NewSurveyController(s.survey, s.export),
		health: controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(a.limiter.Middleware())

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// New 组装依赖与路由，不做任何外部连接；db 与 rdb 由调用方提供（rdb 可为 nil）
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *App {
	app := &App{
		Config:  cfg,
		DB:      db,
		Redis:   rdb,
		Policy:  service.NewPolicy(cfg.Policy),
		limiter: security.NewRateLimiter(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window()),
	}

	repos := app.initRepositories(db)
	svcs := app.initServices(repos, cfg, rdb)

	app.RegisterConfigCallback(func(newCfg *config.Config) {
		app.Policy.Update(newCfg.Policy)
		svcs.survey.UpdateConfig(newCfg.Survey)
	})

	ctrls := app.initControllers(svcs, db, rdb)

	monitoring.Init()

	if cfg.Server.Mode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, ctrls, cfg)

	return app
}

// NewApp 初始化日志、数据库、Redis 与追踪后组装应用
func NewApp(cfg *config.Config) (*App, error) {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Error("Failed to initialize database", zap.Error(err))
		return nil, err
	}

	if cfg.MigrateOnly {
		return &App{Config: cfg, DB: db}, nil
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Error("Failed to initialize redis", zap.Error(err))
		return nil, err
	}

	var tp *sdktrace.TracerProvider
	if cfg.Tracing.Enabled {
		tp, err = tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Error("Failed to initialize tracing", zap.Error(err))
			return nil, err
		}
	}

	app := New(cfg, db, rdb)
	app.tracer = tp
	return app, nil
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:              ":" + a.Config.Server.Port,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	bgCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	go a.limiter.Run(bgCtx)

	if a.Config.ConfigPath != "" {
		watcher := configwatcher.New(a.Config.ConfigPath, a.applyConfig)
		go func() {
			if err := watcher.Run(bgCtx); err != nil {
				logger.Log.Error("config watcher stopped", zap.Error(err))
			}
		}()
	}

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}

	logger.Log.Info("Server exiting")
}

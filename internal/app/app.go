package app

import (
	"context"
	"log"
	"net/http"
	"nihongo_edu_backend/internal/config"
	"nihongo_edu_backend/internal/controller"
	"nihongo_edu_backend/internal/middleware"
	"nihongo_edu_backend/internal/repository"
	"nihongo_edu_backend/internal/service"
	"nihongo_edu_backend/pkg/configwatcher"
	"nihongo_edu_backend/pkg/database"
	"nihongo_edu_backend/pkg/logger"
	"nihongo_edu_backend/pkg/monitoring"
	"nihongo_edu_backend/pkg/security"
	"nihongo_edu_backend/pkg/tracing"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user       *repository.UserRepository
	syllabus   *repository.SyllabusRepository
	session    *repository.SessionRepository
	dialogue   *repository.DialogueRepository
	lesson     *repository.LessonRepository
	motivation *repository.MotivationRepository
}

type services struct {
	auth       *service.AuthService
	user       *service.UserService
	storage    *service.StorageService
	content    *service.ContentService
	syllabus   *service.SyllabusService
	ai         *service.AIService
	evaluation *service.EvaluationService
	session    *service.SessionService
	mastery    *service.MasteryService
	report     *service.ReportService
	motivation *service.MotivationService
}

type controllers struct {
	auth       *controller.AuthController
	user       *controller.UserController
	session    *controller.SessionController
	mastery    *controller.MasteryController
	syllabus   *controller.SyllabusController
	content    *controller.ContentController
	motivation *controller.MotivationController
	health     *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:       repository.NewUserRepository(db),
		syllabus:   repository.NewSyllabusRepository(db),
		session:    repository.NewSessionRepository(db),
		dialogue:   repository.NewDialogueRepository(db),
		lesson:     repository.NewLessonRepository(db),
		motivation: repository.NewMotivationRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.user = service.NewUserService(repos.user)
	s.content = service.NewContentService(repos.lesson, s.storage, cfg)
	s.syllabus = service.NewSyllabusService(repos.syllabus)
	s.motivation = service.NewMotivationService(repos.motivation, rdb)

	s.ai = service.NewAIService(cfg.Grader)
	s.evaluation = service.NewEvaluationService(s.ai, cfg.Assessment)
	s.session = service.NewSessionService(repos.session, repos.dialogue, repos.syllabus, s.evaluation, rdb, db, cfg.Assessment)
	s.mastery = service.NewMasteryService(repos.dialogue)
	s.report = service.NewReportService(s.mastery, s.ai)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:       controller.NewAuthController(s.auth, s.user, s.storage),
		user:       controller.NewUserController(s.user),
		session:    controller.NewSessionController(s.session),
		mastery:    controller.NewMasteryController(s.mastery, s.report, s.user),
		syllabus:   controller.NewSyllabusController(s.syllabus),
		content:    controller.NewContentController(s.content),
		motivation: controller.NewMotivationController(s.motivation, s.auth),
		health:     controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(middleware.RequestID())
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 6000
	}
	router.Use(security.RateLimiter(maxRequests, window))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		log.Fatalf("Failed to initialize redis: %v", err)
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, db, rdb)
	app.services = services
	controllers := app.initControllers(services, db, rdb)

	// 监控初始化
	monitoring.Init()

	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("tutoring-platform", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
			}
		}()
	}

	app.registerRoutes(router, controllers, repos, cfg)

	// 配置热更新：文件变更后通知所有注册的回调
	go configwatcher.WatchConfig("configs/config.yaml", cfg, func(newCfg interface{}) {
		updated, ok := newCfg.(*config.Config)
		if !ok {
			return
		}
		app.Config = updated
		for _, callback := range app.configCallbacks {
			callback(updated)
		}
		logger.Log.Info("configuration reloaded")
	})

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
		router.Static("/api/uploads", cfg.Storage.LocalPath)
	}

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}

package app

import (
	"context"
	"finlit_backend/internal/config"
	"finlit_backend/internal/controller"
	"finlit_backend/internal/repository"
	"finlit_backend/internal/service"
	"finlit_backend/pkg/database"
	"finlit_backend/pkg/logger"
	"finlit_backend/pkg/monitoring"
	"finlit_backend/pkg/security"
	"finlit_backend/pkg/tracing"
	"log"
	"net/http"
	"os"
	"os/signal"
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
	services        *services
	tracerProvider  *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user       *repository.UserRepository
	lesson     *repository.LessonRepository
	quizResult *repository.QuizResultRepository
	story      *repository.StoryRepository
	career     *repository.CareerRepository

	attempts    *repository.RedisAttemptStore
	completions *repository.RedisCompletionStore
}

type services struct {
	auth    *service.AuthService
	storage *service.StorageService
	lesson  *service.LessonService
	quiz    *service.QuizService
	user    *service.UserService
	story   *service.StoryService
	career  *service.CareerService
}

type controllers struct {
	auth   *controller.AuthController
	lesson *controller.LessonController
	quiz   *controller.QuizController
	user   *controller.UserController
	story  *controller.StoryController
	career *controller.CareerController
	health *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ApplyConfig 配置热加载后由 watcher 调用，逐个执行已注册的回调
func (a *App) ApplyConfig(cfg *config.Config) {
	a.Config = cfg
	for _, callback := range a.configCallbacks {
		callback(cfg)
	}
	logger.Log.Info("Configuration reloaded")
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *repositories {
	sessionTTL := time.Duration(cfg.Quiz.SessionTTLHours) * time.Hour
	return &repositories{
		user:        repository.NewUserRepository(db),
		lesson:      repository.NewLessonRepository(db),
		quizResult:  repository.NewQuizResultRepository(db),
		story:       repository.NewStoryRepository(db),
		career:      repository.NewCareerRepository(db),
		attempts:    repository.NewRedisAttemptStore(rdb, sessionTTL),
		completions: repository.NewRedisCompletionStore(rdb),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.lesson = service.NewLessonService(repos.lesson)
	s.quiz = service.NewQuizService(
		s.lesson,
		repos.attempts,
		repos.completions,
		repos.quizResult,
		repos.user,
		service.NewRedisProgressNotifier(rdb),
	)
	s.user = service.NewUserService(repos.user, repos.quizResult, s.quiz)
	s.story = service.NewStoryService(repos.story, repos.user, s.storage)
	s.career = service.NewCareerService(repos.career)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:   controller.NewAuthController(s.auth),
		lesson: controller.NewLessonController(s.lesson, s.quiz),
		quiz:   controller.NewQuizController(s.quiz),
		user:   controller.NewUserController(s.user, s.storage),
		story:  controller.NewStoryController(s.story),
		career: controller.NewCareerController(s.career),
		health: controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 1000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
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

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	if cfg.MigrateOnly {
		logger.Log.Info("Migration completed, exiting (migrate-only mode)")
		os.Exit(0)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db, rdb, cfg)
	services := app.initServices(repos, cfg, rdb)
	app.services = services

	// 课程目录启动时一次性加载进内存
	if err := services.lesson.LoadCatalog(); err != nil {
		logger.Log.Fatal("Failed to load lesson catalog", zap.Error(err))
	}

	controllers := app.initControllers(services, db, rdb)

	// 监控初始化
	monitoring.Init()

	gin.SetMode(cfg.Server.Mode)
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("finlit-platform", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracerProvider = tp
	}

	app.registerRoutes(router, controllers, repos, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	// 答题会话TTL支持热更新
	app.RegisterConfigCallback(func(c *config.Config) {
		repos.attempts.TTL = time.Duration(c.Quiz.SessionTTLHours) * time.Hour
	})

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

	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	logger.Log.Sync()

	log.Println("Server exiting")
}

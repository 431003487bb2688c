package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"iwala99_backend/internal/config"
	"iwala99_backend/internal/controller"
	"iwala99_backend/internal/repository"
	"iwala99_backend/internal/service"
	"iwala99_backend/pkg/database"
	"iwala99_backend/pkg/logger"
	"iwala99_backend/pkg/monitoring"
	"iwala99_backend/pkg/security"
	"iwala99_backend/pkg/tracing"

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
	user         *repository.UserRepository
	challenge    *repository.ChallengeRepository
	submission   *repository.SubmissionRepository
	post         *repository.PostRepository
	conversation *repository.ConversationRepository
	notification *repository.NotificationRepository
}

type services struct {
	auth         *service.AuthService
	storage      *service.StorageService
	user         *service.UserService
	challenge    *service.ChallengeService
	path         *service.PathService
	feed         *service.FeedService
	message      *service.MessageService
	notification *service.NotificationService
	chat         *service.CyberChatService
	stats        *service.StatsService
	hub          *service.RealtimeHub
}

type controllers struct {
	auth         *controller.AuthController
	challenge    *controller.ChallengeController
	path         *controller.PathController
	feed         *controller.FeedController
	message      *controller.MessageController
	notification *controller.NotificationController
	chat         *controller.ChatController
	stats        *controller.StatsController
	health       *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ApplyConfig swaps in a reloaded config and fans it out to the
// registered consumers. Server address and database settings need a
// restart; everything registered here picks up the change live.
func (a *App) ApplyConfig(newCfg *config.Config) {
	a.Config = newCfg
	for _, callback := range a.configCallbacks {
		callback(newCfg)
	}
	logger.Log.Info("Configuration reloaded")
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:         repository.NewUserRepository(db),
		challenge:    repository.NewChallengeRepository(db),
		submission:   repository.NewSubmissionRepository(db),
		post:         repository.NewPostRepository(db),
		conversation: repository.NewConversationRepository(db),
		notification: repository.NewNotificationRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.user = service.NewUserService(repos.user, repos.submission, s.storage)

	s.hub = service.NewRealtimeHub(rdb, repos.conversation)
	go s.hub.Run()

	s.notification = service.NewNotificationService(repos.notification, s.hub)
	s.challenge = service.NewChallengeService(repos.challenge, repos.submission, s.notification, s.hub)
	s.path = service.NewPathService(repos.challenge, repos.submission, repos.user)
	s.feed = service.NewFeedService(repos.post, s.notification)
	s.message = service.NewMessageService(repos.conversation, repos.user, s.notification, s.hub)
	s.chat = service.NewCyberChatService(&cfg.AI, rdb)
	s.stats = service.NewStatsService(repos.user, repos.challenge, repos.submission, s.hub)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:         controller.NewAuthController(s.auth, s.user),
		challenge:    controller.NewChallengeController(s.challenge),
		path:         controller.NewPathController(s.path),
		feed:         controller.NewFeedController(s.feed, s.auth),
		message:      controller.NewMessageController(s.message, s.user, s.hub),
		notification: controller.NewNotificationController(s.notification),
		chat:         controller.NewChatController(s.chat),
		stats:        controller.NewStatsController(s.stats),
		health:       controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 100000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database, cfg.ForceMigrate)
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
	services := app.initServices(repos, cfg, rdb)
	app.services = services
	controllers := app.initControllers(services, db, rdb)

	// AI provider keys and the chat limit can change without a restart.
	app.RegisterConfigCallback(func(c *config.Config) {
		services.chat.Cfg = &c.AI
	})

	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("iwala99-backend", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracerProvider = tp
	}

	app.registerRoutes(router, controllers, repos, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Close sockets and clear presence before the HTTP listener stops.
	if a.services != nil && a.services.hub != nil {
		a.services.hub.Stop()
	}

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

	log.Println("Server exiting")
}

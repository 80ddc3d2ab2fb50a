package internal

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"akiya-share/pkg/cache"
	"akiya-share/pkg/changefeed"
	"akiya-share/pkg/config"
	"akiya-share/pkg/jwt"
	"akiya-share/pkg/logger"
	"akiya-share/pkg/middleware"
	realtimeHTTP "akiya-share/services/realtime/internal/controller/http"
	"akiya-share/services/realtime/internal/usecase"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "akiya-share/services/realtime/docs" // Swagger docs
)

type App struct {
	cfg         *config.Config
	log         *logger.Logger
	redisClient *redis.Client
	bus         changefeed.Bus
	jwtService  *jwt.Service
	httpServer  *http.Server
}

func NewApp(cfg *config.Config) (*App, error) {
	log := logger.New()

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Error("Failed to connect to redis: %v", err)
		return nil, err
	}

	var bus changefeed.Bus
	if cfg.ChangeBus == "" || cfg.ChangeBus == "redis" {
		bus = changefeed.NewRedisBus(redisClient, log)
	} else {
		bus, err = changefeed.NewBus(cfg, log)
		if err != nil {
			log.Error("Failed to connect change bus: %v", err)
			return nil, err
		}
	}

	return &App{
		cfg:         cfg,
		log:         log,
		redisClient: redisClient,
		bus:         bus,
		jwtService:  jwt.NewService(cfg.JWTSecret),
	}, nil
}

func (a *App) Router() *gin.Engine {
	subscriptions := usecase.NewSubscriptionUseCase(a.bus, a.log)
	realtimeHandler := realtimeHTTP.NewRealtimeHandler(subscriptions, a.jwtService, middleware.NewRevocationStore(a.redisClient), a.log)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * 3600,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// The websocket handler authenticates from the token query parameter itself.
	rt := r.Group("/realtime/v1")
	rt.GET("/ws", realtimeHandler.HandleWebSocket)

	return r
}

func (a *App) Run() error {
	a.httpServer = &http.Server{
		Addr:    ":" + a.cfg.ServerPort,
		Handler: a.Router(),
	}

	go func() {
		a.log.Info("Realtime service starting on port %s", a.cfg.ServerPort)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.log.Error("Failed to start server: %v", err)
			panic(err)
		}
	}()

	return nil
}

func (a *App) Wait() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	a.log.Info("Shutting down realtime service...")
}

func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Shutdown does not track hijacked websocket connections. Their streams
	// end once the bus and Redis connections are closed.
	if err := a.bus.Close(); err != nil {
		a.log.Error("Error closing change bus: %v", err)
	}

	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.log.Error("Server forced to shutdown: %v", err)
		return err
	}

	if err := a.redisClient.Close(); err != nil {
		a.log.Error("Error closing Redis: %v", err)
	}

	a.log.Info("Realtime service exited")
	return nil
}

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
	"akiya-share/pkg/database"
	"akiya-share/pkg/jwt"
	"akiya-share/pkg/logger"
	"akiya-share/pkg/middleware"
	"akiya-share/pkg/queue"
	"akiya-share/pkg/s3"
	postHTTP "akiya-share/services/post/internal/controller/http"
	"akiya-share/services/post/internal/repo/persistent"
	"akiya-share/services/post/internal/usecase"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	_ "akiya-share/services/post/docs" // Swagger docs
)

type App struct {
	cfg         *config.Config
	log         *logger.Logger
	db          *gorm.DB
	redisClient *redis.Client
	s3Client    *s3.Client
	queueClient *queue.Client
	bus         changefeed.Bus
	jwtService  *jwt.Service
	httpServer  *http.Server
	stop        context.CancelFunc
}

func NewApp(cfg *config.Config) (*App, error) {
	log := logger.New()

	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Error("Failed to connect to database: %v", err)
		return nil, err
	}

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Error("Failed to connect to redis: %v", err)
		return nil, err
	}

	s3Client, err := s3.NewClient(cfg)
	if err != nil {
		log.Error("Failed to create S3 client: %v", err)
		return nil, err
	}

	queueClient, err := queue.NewRabbitMQClient(cfg, log)
	if err != nil {
		log.Error("Failed to connect to RabbitMQ: %v (continuing without cleanup queue)", err)
		queueClient = nil
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
		db:          db,
		redisClient: redisClient,
		s3Client:    s3Client,
		queueClient: queueClient,
		bus:         bus,
		jwtService:  jwt.NewService(cfg.JWTSecret),
	}, nil
}

func (a *App) Run() error {
	ctx, stop := context.WithCancel(context.Background())
	a.stop = stop

	postRepo := persistent.NewPostRepository(a.db)
	likeRepo := persistent.NewLikeRepository(a.db)
	commentRepo := persistent.NewCommentRepository(a.db)
	profileRepo := persistent.NewProfileRepository(a.db)

	var cleanup usecase.CleanupQueue
	if a.queueClient != nil {
		cleanup = a.queueClient
	}

	postUseCase := usecase.NewPostUseCase(postRepo, likeRepo, a.bus, a.log)
	commentUseCase := usecase.NewCommentUseCase(commentRepo, postRepo, a.bus, a.log)
	profileUseCase := usecase.NewProfileUseCase(profileRepo, a.log)
	storageUseCase := usecase.NewStorageUseCase(a.s3Client, cleanup, []string{a.cfg.ImagesBucket, a.cfg.AvatarsBucket}, a.log)

	if a.queueClient != nil {
		if err := a.queueClient.ConsumeCleanupTasks(ctx, storageUseCase.RetryCleanup); err != nil {
			a.log.Error("Failed to start cleanup consumer: %v", err)
		}
	}

	revocations := middleware.NewRevocationStore(a.redisClient)
	postHandler := postHTTP.NewPostHandler(postUseCase, a.log)
	commentHandler := postHTTP.NewCommentHandler(commentUseCase)
	profileHandler := postHTTP.NewProfileHandler(profileUseCase)
	storageHandler := postHTTP.NewStorageHandler(storageUseCase)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/storage/v1/object/public/:bucket/*path", storageHandler.ServePublic)

	api := r.Group("/api/v1")
	api.Use(middleware.OptionalAuthMiddleware(a.jwtService, revocations))
	api.Use(middleware.RateLimitMiddleware(a.redisClient, 100, time.Minute))
	{
		api.GET("/posts", postHandler.ListPosts)
		api.GET("/posts/:id", postHandler.GetPost)
		api.GET("/posts/:id/comments", commentHandler.ListComments)
		api.GET("/profiles/:id", profileHandler.GetProfile)

		protected := api.Group("")
		protected.Use(middleware.AuthMiddlewareWithRevocation(a.jwtService, revocations))
		{
			protected.POST("/posts", postHandler.CreatePost)
			protected.PATCH("/posts/:id", postHandler.UpdatePost)
			protected.DELETE("/posts/:id", postHandler.DeletePost)

			protected.POST("/likes", postHandler.LikePost)
			protected.DELETE("/likes/:post_id", postHandler.UnlikePost)

			protected.POST("/posts/:id/comments", commentHandler.AddComment)
			protected.PATCH("/comments/:id", commentHandler.EditComment)
			protected.DELETE("/comments/:id", commentHandler.DeleteComment)

			protected.PUT("/profiles", profileHandler.UpsertProfile)

			protected.POST("/storage/:bucket", storageHandler.Upload)
			protected.DELETE("/storage/:bucket", storageHandler.Remove)
		}
	}

	a.httpServer = &http.Server{
		Addr:    ":" + a.cfg.ServerPort,
		Handler: r,
	}

	go func() {
		a.log.Info("Post service starting on port %s", a.cfg.ServerPort)
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
	a.log.Info("Shutting down post service...")
}

func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if a.stop != nil {
		a.stop()
	}

	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.log.Error("Server forced to shutdown: %v", err)
		return err
	}

	sqlDB, err := a.db.DB()
	if err == nil {
		if err := sqlDB.Close(); err != nil {
			a.log.Error("Error closing database: %v", err)
		}
	}

	if err := a.bus.Close(); err != nil {
		a.log.Error("Error closing change bus: %v", err)
	}

	if err := a.redisClient.Close(); err != nil {
		a.log.Error("Error closing Redis: %v", err)
	}

	if a.queueClient != nil {
		if err := a.queueClient.Close(); err != nil {
			a.log.Error("Error closing RabbitMQ: %v", err)
		}
	}

	a.log.Info("Post service exited")
	return nil
}

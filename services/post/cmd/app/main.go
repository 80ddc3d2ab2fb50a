package main

import (
	"akiya-share/pkg/config"
	app "akiya-share/services/post/internal/app"

	_ "akiya-share/services/post/docs" // Swagger docs
)

// @title           Post Service API
// @version         1.0
// @description     Posts, likes, comments, profiles and image storage for akiya-share

// @host      localhost:8002
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	if !cfg.RequireJWTSecret() {
		panic("JWT_SECRET must be set in environment variables")
	}

	application, err := app.NewApp(cfg)
	if err != nil {
		panic(err)
	}

	if err := application.Run(); err != nil {
		panic(err)
	}

	application.Wait()

	if err := application.Shutdown(); err != nil {
		panic(err)
	}
}

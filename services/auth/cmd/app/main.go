package main

import (
	"akiya-share/pkg/config"
	app "akiya-share/services/auth/internal/app"

	_ "akiya-share/services/auth/docs" // Swagger docs
)

// @title           Auth Service API
// @version         1.0
// @description     Identity for akiya-share: accounts, sessions, avatars and password recovery

// @host      localhost:8001
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

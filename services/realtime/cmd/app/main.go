package main

import (
	"akiya-share/pkg/config"
	app "akiya-share/services/realtime/internal/app"

	_ "akiya-share/services/realtime/docs" // Swagger docs
)

// @title           Realtime Service API
// @version         1.0
// @description     Row change subscriptions over websocket for akiya-share

// @host      localhost:8003
// @BasePath  /realtime/v1

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

package main

import (
	"log"

	"github.com/example/stokai/internal/config"
	"github.com/example/stokai/internal/stub"
)

func main() {
	cfg := config.Load()
	db := stub.Connect(cfg.DatabaseURL)

	if err := stub.Seed(db); err != nil {
		log.Printf("seed failed: %v", err)
	}

	app := stub.NewApp(db, cfg)

	log.Printf("Starting stub backend on :%s", cfg.AppPort)
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		log.Fatalf("fiber.Listen error: %v", err)
	}
}

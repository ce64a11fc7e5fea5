package main

import (
	"flag"
	"log"
	"os"

	"github.com/FabienAstre/crypto-bullrun-dashboard/internal/di"
	"github.com/FabienAstre/crypto-bullrun-dashboard/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	log.Printf("env=%s primary=%s secondary=%s", cfg.Environment, cfg.Assets.Primary, cfg.Assets.Secondary)

	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}

package main

import (
	"flag"
	"log"
	"os"

	"github.com/trade-stasvinokur/momentum-strategy-cameron/internal/di"
	"github.com/trade-stasvinokur/momentum-strategy-cameron/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	log.Printf("env=%s tickers=%v run_at=%s", cfg.Environment, cfg.TInvest.Tickers, cfg.Scanner.RunAt)

	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	// Run application (blocks until signal)
	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}

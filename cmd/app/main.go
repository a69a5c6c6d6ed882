package main

import (
	"context"
	"flag"
	"log"
	"os"

	"EconDash/internal/di"
	"EconDash/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	once := flag.Bool("once", false, "run the pipeline once, print the yearly table and exit")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	app, cleanup, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}
	defer cleanup()

	if *once {
		if err := app.RunOnce(context.Background(), os.Stdout); err != nil {
			log.Printf("no data: %v", err)
			cleanup()
			os.Exit(1)
		}
		return
	}

	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		cleanup()
		os.Exit(1)
	}
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/MametaroGG/BoothPic/internal/app"
	config "github.com/MametaroGG/BoothPic/internal/cfg"
	"github.com/MametaroGG/BoothPic/pkg/logger"
)

func main() {
	log := logger.NewSlogLogger()

	cfg, err := config.Load(log)
	if err != nil {
		log.Errorf(err, "failed to load config")
		os.Exit(1)
	}

	application, err := app.NewApp(cfg, log)
	if err != nil {
		log.Errorf(err, "failed to initialize app")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := application.Seed(ctx); err != nil {
		log.Errorf(err, "seeding failed")
		os.Exit(1)
	}
}

package main

import (
	"os"

	"github.com/MametaroGG/BoothPic/internal/app"
	config "github.com/MametaroGG/BoothPic/internal/cfg"
	"github.com/MametaroGG/BoothPic/pkg/logger"
)

//	@title			BoothPic API
//	@version		1.0
//	@description	Поиск похожих товаров BOOTH по изображению

//	@host		localhost:8080
//	@BasePath	/api/v1

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

	if err := application.Run(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"log"
	"os"
	"time"

	"github.com/picstash/picstash/config"
	"github.com/picstash/picstash/models"
	"github.com/picstash/picstash/routes"
	"github.com/picstash/picstash/storage"
	"github.com/picstash/picstash/utils"
)

func main() {
	cfg := config.Load()
	if cfg.SessionSecret == "" {
		log.Fatal("SESSION_SECRET must be set in environment variables")
	}

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(&models.User{}, &models.ImageUpload{})

	if err := os.MkdirAll(cfg.UploadDir(), 0o755); err != nil {
		utils.Sugar.Fatalf("failed to create upload directory: %v", err)
	}

	sessions := utils.NewSessionStore(utils.GetRedis(), time.Duration(cfg.SessionTTLMinutes)*time.Minute)
	r := routes.SetupRouter(db, sessions, storage.NewDisk())

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}

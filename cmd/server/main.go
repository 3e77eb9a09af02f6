package main

import (
	"context"
	"log"

	"video-consulta-sync/internal/bootstrap"
	"video-consulta-sync/internal/config"
	"video-consulta-sync/internal/model"
	"video-consulta-sync/internal/server"
	"video-consulta-sync/internal/tracer"
	"video-consulta-sync/pkg/database"

	"gorm.io/gorm"
)

func main() {
	// 0. Initialize Tracer
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database (optional, relay works without persistence)
	var gormDB *gorm.DB
	if cfg.Database.Connection != "" {
		db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
		if err != nil {
			log.Panicf("Unable to connect to GORM DB: %v", err)
		}
		if err := db.AutoMigrate(&model.Encounter{}); err != nil {
			log.Panicf("Unable to migrate encounter schema: %v", err)
		}
		gormDB = db
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)

	// 4. Start Background Services
	go func() {
		log.Println("Background: Starting Agent Bridge...")
		if err := container.AgentBridgeService.Consume(context.Background()); err != nil {
			log.Printf("Background Agent Bridge Error: %v", err)
		}
	}()

	// 5. Metrics
	server.StartMetricsServer(cfg.App.MetricsPort)

	// 6. Initialize Server
	srv := server.New(cfg, container)

	// 7. Run Server
	log.Fatal(srv.Run())
}

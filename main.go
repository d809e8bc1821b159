package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-dashboard/config"
	"github.com/yeremiapane/restaurant-dashboard/database"
	"github.com/yeremiapane/restaurant-dashboard/kds"
	"github.com/yeremiapane/restaurant-dashboard/router"
	"github.com/yeremiapane/restaurant-dashboard/services"
	"github.com/yeremiapane/restaurant-dashboard/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		utils.InitLogger("info")
		utils.ErrorLogger.Fatalf("Invalid configuration: %v", err)
	}
	utils.InitLogger(cfg.LogLevel)

	if cfg.IsRelease() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")

	hub := kds.NewHub(kds.HubConfig{
		PingInterval: cfg.PingInterval,
		PongTimeout:  cfg.PongTimeout,
		Logger:       utils.InfoLogger,
	})
	hub.Start()
	defer hub.Stop()

	monitor := services.NewChangeMonitor(db, hub)
	monitor.Interval = cfg.ChangeMonitorInterval
	monitor.Logger = utils.Component("change_monitor")
	monitor.Start()
	defer monitor.Stop()

	r := router.SetupRouter(services.NewOrderService(db), hub, router.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		RateLimit:      cfg.RateLimit,
		RateBurst:      cfg.RateBurst,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		utils.InfoLogger.Printf("Listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.ErrorLogger.Fatal(err)
		}
	}()

	<-ctx.Done()
	utils.InfoLogger.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.ErrorLogger.Printf("Server forced to shutdown: %v", err)
	}
}

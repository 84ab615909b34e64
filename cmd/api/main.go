package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bureauhq/gripp-backend-go/internal/config"
	appHTTP "github.com/bureauhq/gripp-backend-go/internal/handler/http"
	"github.com/bureauhq/gripp-backend-go/internal/pkg/cache"
	"github.com/bureauhq/gripp-backend-go/internal/pkg/cron"
	"github.com/bureauhq/gripp-backend-go/internal/pkg/database"
	"github.com/bureauhq/gripp-backend-go/internal/pkg/gripp"
	"github.com/bureauhq/gripp-backend-go/internal/repository/postgresql"
	reconcileService "github.com/bureauhq/gripp-backend-go/internal/service/reconcile"
	syncService "github.com/bureauhq/gripp-backend-go/internal/service/sync"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		os.Exit(1)
	}
	defer db.Close()

	employeeRepo := postgresql.NewEmployeeRepository(db)
	contractRepo := postgresql.NewContractRepository(db)
	holidayRepo := postgresql.NewHolidayRepository(db)
	absenceRepo := postgresql.NewAbsenceRepository(db)
	hoursRepo := postgresql.NewHoursRepository(db)

	grippClient := gripp.NewClient(cfg.Gripp, gripp.QueueOptions{})
	defer grippClient.Close()

	statsCache := cache.New(cfg.Cache.TTL, cfg.Cache.MaxSize)
	reconcileSvc := reconcileService.NewService(
		employeeRepo, contractRepo, holidayRepo, absenceRepo, hoursRepo, statsCache,
	)
	syncSvc := syncService.NewService(
		grippClient,
		postgresql.NewTransactor(db),
		employeeRepo, contractRepo, holidayRepo, absenceRepo, hoursRepo,
		reconcileSvc,
	)

	syncJobs := cron.NewSyncJobs(syncSvc, cfg.Sync)
	scheduler := cron.NewScheduler()
	syncJobs.RegisterJobs(scheduler)

	// `api sync-once` runs every registered job a single time and exits,
	// for manual backfills and deploy hooks.
	if len(os.Args) > 1 && os.Args[1] == "sync-once" {
		scheduler.RunOnce(context.Background())
		return
	}

	scheduler.Start()
	defer scheduler.Stop()

	statsHandler := appHTTP.NewStatsHandler(reconcileSvc)
	syncHandler := appHTTP.NewSyncHandler(syncSvc, syncJobs)
	router := appHTTP.NewRouter(cfg.App, statsHandler, syncHandler)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.App.Port),
		Handler: router,
	}

	go func() {
		slog.Info("server listening", "port", cfg.App.Port, "env", cfg.App.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("server shutdown", "error", err)
	}
}

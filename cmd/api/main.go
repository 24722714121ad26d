package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/GoSim-25-26J-441/go-energy-analysis/config"
	"github.com/GoSim-25-26J-441/go-energy-analysis/internal/auth"
	authmw "github.com/GoSim-25-26J-441/go-energy-analysis/internal/auth/middleware"
	"github.com/GoSim-25-26J-441/go-energy-analysis/internal/bootstrap"
	cronjob "github.com/GoSim-25-26J-441/go-energy-analysis/internal/energy/cron"
	energyhttp "github.com/GoSim-25-26J-441/go-energy-analysis/internal/energy/http"
	"github.com/GoSim-25-26J-441/go-energy-analysis/internal/energy/repository"
	"github.com/GoSim-25-26J-441/go-energy-analysis/internal/energy/service"
	"github.com/GoSim-25-26J-441/go-energy-analysis/internal/gbs"
	"github.com/GoSim-25-26J-441/go-energy-analysis/internal/host/snapshot"
	"github.com/GoSim-25-26J-441/go-energy-analysis/internal/sso"
)

const serviceName = "go-energy-analysis"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	bootstrap.SetGinMode(cfg.App.Environment)
	bootstrap.SetLogLevel(cfg.App.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	doc, err := snapshot.Open(cfg.Host.SnapshotPath)
	if err != nil {
		log.Fatalf("host snapshot: %v", err)
	}

	client := gbs.NewClient(cfg.GBS.BaseURL,
		gbs.WithTimeout(cfg.GBS.Timeout()),
		gbs.WithRateLimit(rate.Limit(cfg.GBS.RateLimit), cfg.GBS.RateBurst),
		gbs.WithAuthenticator(sso.Default(cfg.Host.APIPath)),
	)

	var rdb *redis.Client
	var runs service.RunRecorder
	var cache service.ProjectCache
	if cfg.Redis.Addr != "" {
		rdb, err = bootstrap.OpenRedis(ctx, cfg.Redis)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		defer rdb.Close()
		runs = repository.NewRunRepository(rdb)
		cache = repository.NewProjectCache(rdb, cfg.Scheduler.ProjectCacheTTL)
	} else {
		log.Println("REDIS_ADDR not set, run ledger and project cache disabled")
	}

	var db *sql.DB
	var history service.HistoryRecorder
	if dsn := cfg.Database.ConnString(); dsn != "" {
		db, err = bootstrap.OpenDB(ctx, bootstrap.DBOptions{DSN: dsn})
		if err != nil {
			log.Fatalf("db: %v", err)
		}
		defer db.Close()
		historyRepo := repository.NewHistoryRepository(db)
		if err := historyRepo.EnsureSchema(ctx); err != nil {
			log.Fatalf("db schema: %v", err)
		}
		history = historyRepo
	} else {
		log.Println("DB_DSN and DB_HOST not set, upload history disabled")
	}

	var verifier authmw.TokenVerifier
	if cfg.Firebase.CredentialsPath != "" {
		authClient, err := auth.InitializeFirebase(ctx, &cfg.Firebase)
		if err != nil {
			log.Fatalf("firebase: %v", err)
		}
		verifier = authClient
	} else {
		log.Println("FIREBASE_CREDENTIALS_PATH not set, API is unauthenticated")
	}

	analysis := service.NewAnalysisService(client, runs, history)
	projects := service.NewProjectService(client, doc, cache)
	exports := service.NewExportService(doc)
	solar := service.NewSolarService(doc)

	scheduler := cronjob.NewScheduler(cfg.GBS.Timeout())
	if cache != nil {
		err := scheduler.AddRefresh("project_cache", cfg.Scheduler.ProjectCacheRefresh, func(ctx context.Context) error {
			_, err := projects.RefreshProjects(ctx)
			return err
		})
		if err != nil {
			log.Fatalf("scheduler: %v", err)
		}
		scheduler.Start()
	}

	router := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName:    serviceName,
		Version:        cfg.App.Version,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		DB:             db,
		Redis:          rdb,
		Energy:         energyhttp.New(analysis, projects, exports, solar),
		Verifier:       verifier,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("%s %s listening on :%s", serviceName, cfg.App.Version, cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	scheduler.Stop(shutdownCtx)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

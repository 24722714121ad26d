package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/time/rate"

	"github.com/GoSim-25-26J-441/go-energy-analysis/config"
	"github.com/GoSim-25-26J-441/go-energy-analysis/internal/bootstrap"
	"github.com/GoSim-25-26J-441/go-energy-analysis/internal/energy/repository"
	"github.com/GoSim-25-26J-441/go-energy-analysis/internal/energy/service"
	"github.com/GoSim-25-26J-441/go-energy-analysis/internal/gbs"
	"github.com/GoSim-25-26J-441/go-energy-analysis/internal/host/snapshot"
	"github.com/GoSim-25-26J-441/go-energy-analysis/internal/sso"
)

const usage = `usage: energy <command> [flags]

commands:
  run           -project ID [-parametric] [-timeout-ms N] file.xml...
  project       -title TITLE
  projects
  history       -project ID [-limit N] | -batch ID
  delete-run    -run ID
  export-mass   -folder DIR -name NAME -mass ID [-shading ID,ID] -connect
  export-zones  -folder DIR -name NAME -zones ID,ID [-shading ID,ID] -connect
  solar         -azimuth DEG -altitude DEG
  stamp         file.xml...`

func main() {
	if len(os.Args) < 2 {
		log.Fatal(usage)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd, args := os.Args[1], os.Args[2:]
	if cmd == "stamp" {
		if err := runStamp(os.Stdout, args); err != nil {
			log.Fatal(err)
		}
		return
	}

	a, cleanup, err := newApp(ctx)
	if err != nil {
		log.Fatal(err)
	}
	defer cleanup()

	switch cmd {
	case "run":
		err = a.runAnalysis(ctx, args)
	case "project":
		err = a.runProject(ctx, args)
	case "projects":
		err = a.runProjects(ctx, args)
	case "history":
		err = a.runHistory(ctx, args)
	case "delete-run":
		err = a.runDeleteRun(ctx, args)
	case "export-mass":
		err = a.runExportMass(ctx, args)
	case "export-zones":
		err = a.runExportZones(ctx, args)
	case "solar":
		err = a.runSolar(ctx, args)
	default:
		log.Fatalf("unknown command: %s\n%s", cmd, usage)
	}
	if err != nil {
		log.Fatal(err)
	}
}

// newApp wires the services from configuration. Redis and PostgreSQL are
// used when configured, as in the API.
func newApp(ctx context.Context) (*app, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	bootstrap.SetLogLevel(cfg.App.LogLevel)

	doc, err := snapshot.Open(cfg.Host.SnapshotPath)
	if err != nil {
		return nil, nil, err
	}

	client := gbs.NewClient(cfg.GBS.BaseURL,
		gbs.WithTimeout(cfg.GBS.Timeout()),
		gbs.WithRateLimit(rate.Limit(cfg.GBS.RateLimit), cfg.GBS.RateBurst),
		gbs.WithAuthenticator(sso.Default(cfg.Host.APIPath)),
	)

	var closers []func()
	cleanup := func() {
		for _, c := range closers {
			c()
		}
	}

	var runs service.RunRecorder
	var cache service.ProjectCache
	if cfg.Redis.Addr != "" {
		rdb, err := bootstrap.OpenRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, func() { rdb.Close() })
		runs = repository.NewRunRepository(rdb)
		cache = repository.NewProjectCache(rdb, cfg.Scheduler.ProjectCacheTTL)
	}

	var history service.HistoryRecorder
	if dsn := cfg.Database.ConnString(); dsn != "" {
		db, err := bootstrap.OpenDB(ctx, bootstrap.DBOptions{DSN: dsn})
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		closers = append(closers, func() { db.Close() })
		repo, err := openHistory(ctx, db)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		history = repo
	}

	return &app{
		out:       os.Stdout,
		timeoutMs: cfg.GBS.TimeoutMs,
		analysis:  service.NewAnalysisService(client, runs, history),
		projects:  service.NewProjectService(client, doc, cache),
		exports:   service.NewExportService(doc),
		solar:     service.NewSolarService(doc),
	}, cleanup, nil
}

// openHistory creates the upload history table when missing so a fresh
// database can record the first batch.
func openHistory(ctx context.Context, db *sql.DB) (*repository.HistoryRepository, error) {
	repo := repository.NewHistoryRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	return repo, nil
}

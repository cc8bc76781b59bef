package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"golang.org/x/sync/errgroup"

	"github.com/MJE43/arcade-engine-go/internal/api"
	"github.com/MJE43/arcade-engine-go/internal/arcade"
	"github.com/MJE43/arcade-engine-go/internal/autoplay"
	"github.com/MJE43/arcade-engine-go/internal/config"
	"github.com/MJE43/arcade-engine-go/internal/engine"
	"github.com/MJE43/arcade-engine-go/internal/events"
	"github.com/MJE43/arcade-engine-go/internal/games"
	"github.com/MJE43/arcade-engine-go/internal/history"
	"github.com/MJE43/arcade-engine-go/internal/ledger"
	"github.com/MJE43/arcade-engine-go/internal/store"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("arcade: %v", err)
	}
}

func run() error {
	cfg, err := config.Load(".env")
	if err != nil {
		return err
	}
	tuning, err := config.LoadTuning(cfg.TuningFile)
	if err != nil {
		return err
	}

	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bus := events.NewBus()
	rec := history.NewRecorder(db, tuning.History.Limit)
	defer rec.Attach(bus)()

	l := ledger.New(
		ledger.WithLimits(tuning.Ledger),
		ledger.WithPersister(rec),
	)
	l.Restore(rec.Load(ctx, l.Defaults()))

	clk := clock.New()
	sched := engine.NewClockScheduler(clk)
	reg := games.NewRegistry(games.Deps{
		Ledger:    l,
		Events:    bus,
		Source:    newSource(cfg.RNGSeed),
		Scheduler: sched,
		Clock:     clk,
	}, tuning.Games)

	a := arcade.New(arcade.Options{
		Ledger:    l,
		Registry:  reg,
		Bus:       bus,
		History:   rec,
		Scheduler: sched,
	})
	runner := autoplay.NewRunner(a, l, bus)

	srv := api.NewServer(api.Options{
		Arcade:         a,
		Autoplay:       runner,
		Bus:            bus,
		DB:             db,
		AllowedOrigins: cfg.AllowedOrigins,
	})
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("listening on %s (engine %s)", cfg.HTTPAddr, api.EngineVersion)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Printf("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := runner.Stop(); err != nil && !errors.Is(err, autoplay.ErrNotRunning) {
			log.Printf("autoplay stop: %v", err)
		}
		srv.CloseStreams()
		err := httpServer.Shutdown(shutdownCtx)
		a.Close()
		return err
	})
	return g.Wait()
}

// openStore opens SQLite at cfg.DBPath, or the in-memory store when the
// path is config.MemoryDBPath.
func openStore(cfg config.Config) (store.DB, error) {
	if cfg.InMemoryStore() {
		log.Printf("ARCADE_DB_PATH=%s, state will not survive a restart", config.MemoryDBPath)
		return store.NewMemoryDB(), nil
	}
	db, err := store.NewSQLiteDB(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// newSource returns a replayable source for "server:client" or "server"
// seeds, and the runtime source otherwise.
func newSource(seed string) engine.Source {
	if seed == "" {
		return engine.NewSource()
	}
	server, client, ok := strings.Cut(seed, ":")
	if !ok {
		client = "arcade"
	}
	log.Printf("using seeded randomness")
	return engine.NewSeededSource(server, client, 0)
}

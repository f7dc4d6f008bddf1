package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cbodonnell/cookiemaze/pkg/api"
	"github.com/cbodonnell/cookiemaze/pkg/config"
	"github.com/cbodonnell/cookiemaze/pkg/coordinator"
	"github.com/cbodonnell/cookiemaze/pkg/log"
	"github.com/cbodonnell/cookiemaze/pkg/maze"
	"github.com/cbodonnell/cookiemaze/pkg/network"
	"github.com/cbodonnell/cookiemaze/pkg/registry"
	"github.com/cbodonnell/cookiemaze/pkg/repositories"
	"github.com/cbodonnell/cookiemaze/pkg/version"
	"github.com/cbodonnell/cookiemaze/pkg/workers"
	"golang.org/x/sync/errgroup"
)

func main() {
	wsPort := flag.Int("ws-port", 8888, "WebSocket port to listen on")
	apiPort := flag.Int("api-port", 9090, "API port to listen on")
	logLevel := flag.String("log-level", "info", "Log level")
	flag.Parse()

	parsedLogLevel, err := log.ParseLogLevel(*logLevel)
	if err != nil {
		panic(fmt.Sprintf("Failed to parse log level: %v", err))
	}

	logger := log.New(os.Stdout, parsedLogLevel)
	log.SetDefaultLogger(logger)
	log.Info("Log level set to %s", parsedLogLevel)

	log.Info("Starting cookie maze server version %s", version.Get())
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repository, err := repositories.NewRepository(ctx, cfg.DatabaseURL, repositories.NewRepositoryOptions{
		SQLiteMigrations:   cfg.SQLiteMigrations,
		PostgresMigrations: cfg.PostgresMigrations,
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to create repository: %v", err))
	}
	defer repository.Close(context.Background())

	games := registry.New(registry.NewRegistryOptions{
		TTL:       cfg.GameTTL,
		Generator: maze.NewGenerator(time.Now().UnixNano()),
	})
	records, err := repository.LoadGames(ctx)
	if err != nil {
		log.Error("Failed to load saved games, starting empty: %v", err)
	} else {
		log.Info("Restored %d of %d saved games", games.Restore(records), len(records))
	}

	coord := coordinator.New(coordinator.NewCoordinatorOptions{
		Games:       games,
		GracePeriod: cfg.GracePeriod,
	})
	defer coord.Close()

	var wsTLS *network.TLSConfig
	var apiTLS *api.TLSConfig
	if cfg.TLSEnabled() {
		wsTLS = &network.TLSConfig{CertFile: cfg.TLSCertFile, KeyFile: cfg.TLSKeyFile}
		apiTLS = &api.TLSConfig{CertFile: cfg.TLSCertFile, KeyFile: cfg.TLSKeyFile}
	}

	wsServer := network.NewWSServer(network.NewWSServerOptions{
		Port:    *wsPort,
		TLS:     wsTLS,
		Handler: coord,
	})
	apiServer := api.NewAPIServer(api.NewAPIServerOptions{
		Port:                *apiPort,
		TLS:                 apiTLS,
		Games:               games,
		PublicURL:           cfg.PublicURL,
		CreateRatePerMinute: cfg.CreateRatePerMinute,
	})

	saveGamesWorker := workers.NewSaveGamesWorker(workers.NewSaveGamesWorkerOptions{
		Repository: repository,
		Source:     games,
		Interval:   cfg.SnapshotInterval,
	})
	cleanupWorker := workers.NewCleanupWorker(workers.NewCleanupWorkerOptions{
		Expirer:    games,
		Repository: repository,
		OnRemoved:  coord.CloseGame,
		Interval:   cfg.CleanupInterval,
	})
	broadcastWorker := workers.NewBroadcastWorker(workers.NewBroadcastWorkerOptions{
		Broadcaster: coord,
		Interval:    cfg.BroadcastInterval,
	})

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return wsServer.Start(ctx)
	})
	g.Go(func() error {
		return apiServer.Start()
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return apiServer.Stop(shutdownCtx)
	})
	g.Go(func() error {
		saveGamesWorker.Start(ctx)
		return nil
	})
	g.Go(func() error {
		cleanupWorker.Start(ctx)
		return nil
	})
	g.Go(func() error {
		broadcastWorker.Start(ctx)
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("Server stopped with error: %v", err)
	}
	<-saveGamesWorker.Done()
	log.Info("Server stopped")
}

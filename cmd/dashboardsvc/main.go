package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/nofilahm/salesdash/internal/infra/config"
	"github.com/nofilahm/salesdash/internal/infra/logging"
	"github.com/nofilahm/salesdash/internal/infra/transport/http"
	"github.com/nofilahm/salesdash/internal/repo/credential"
	"github.com/nofilahm/salesdash/internal/repo/dataset"
	"github.com/nofilahm/salesdash/internal/repo/session"
	"github.com/nofilahm/salesdash/internal/svc/analyticssvc"
	"github.com/nofilahm/salesdash/internal/svc/dashboardsvc"
)

const (
	appName = "salesdash"
	svcName = "dashboardsvc"
)

type Config struct {
	config.EnvConfig

	Log         logging.LoggerConfig                  `envPrefix:"LOG_"`
	Gate        dashboardsvc.GateConfig               `envPrefix:"GATE_"`
	Session     session.MemorySessionRepositoryConfig `envPrefix:"GATE_SESSION_"`
	HTTP        dashboardsvc.HTTPTransportConfig      `envPrefix:"HTTP_"`
	Analytics   analyticssvc.AnalyticsConfig          `envPrefix:"ANALYTICS_"`
	Dataset     dataset.FileDatasetRepositoryConfig   `envPrefix:"DATASET_"`
	Credentials credential.CredentialStoreConfig      `envPrefix:"CREDENTIALS_"`
}

func main() {
	var (
		cfg Config
		ctx = context.Background()

		configPrefix = strings.ToUpper(strings.Join([]string{appName, svcName}, "_"))
		loggerName   = strings.ToLower(strings.Join([]string{appName, svcName}, "."))
	)

	if err := config.LoadDotenv(".env"); err != nil {
		panic(err)
	}

	if err := config.Parse(ctx, &cfg, configPrefix); err != nil {
		panic(err)
	}

	logging.Configure(ctx, cfg.Log, loggerName)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		panic(err)
	}
}

func run(ctx context.Context, cfg Config) (err error) {
	defer func() {
		log := logging.GetLogger("cmd.dashboardsvc")

		if err != nil {
			log.ErrorContext(ctx, "error", "err", err)
		} else {
			log.InfoContext(ctx, "shutdown")
		}
	}()

	store, err := credential.StoreFactoryFromConfig(cfg.Credentials)(ctx)
	if err != nil {
		return fmt.Errorf("new credential store: %w", err)
	}
	defer store.Close()

	sessions := session.NewMemoryRepository(cfg.Session)
	go sessions.RunSweeper(ctx, cfg.Session.SweepInterval)

	gate := dashboardsvc.NewGate(
		cfg.Gate,
		store,
		dataset.NewFileRepository(cfg.Dataset),
		analyticssvc.NewAnalyticsEngine(cfg.Analytics),
		session.NewID,
	)

	httpTransport := dashboardsvc.NewHTTPTransport(gate, sessions, cfg.HTTP)

	if err := http.ListenAndServe(ctx, httpTransport, cfg.HTTP.HTTPTransportConfig); err != nil {
		return fmt.Errorf("listen and serve: %w", err)
	}

	return nil
}

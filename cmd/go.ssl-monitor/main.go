package main

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"gitlab.lucky-team.pro/luckyads/go.ssl-monitor/internal/config"
	"gitlab.lucky-team.pro/luckyads/go.ssl-monitor/internal/environment"
	ll "gitlab.lucky-team.pro/luckyads/go.ssl-monitor/internal/logger"
	"gitlab.lucky-team.pro/luckyads/go.ssl-monitor/internal/metrics"
	"gitlab.lucky-team.pro/luckyads/go.ssl-monitor/internal/notify"
	"gitlab.lucky-team.pro/luckyads/go.ssl-monitor/internal/scheduler"
	"gitlab.lucky-team.pro/luckyads/go.ssl-monitor/internal/server/http"
	"gitlab.lucky-team.pro/luckyads/go.ssl-monitor/internal/service/alert"
	"gitlab.lucky-team.pro/luckyads/go.ssl-monitor/internal/service/domain"
	"gitlab.lucky-team.pro/luckyads/go.ssl-monitor/internal/storage"
	"gitlab.lucky-team.pro/luckyads/go.ssl-monitor/internal/storage/file"
	"gitlab.lucky-team.pro/luckyads/go.ssl-monitor/internal/storage/postgres"
)

//nolint:gochecknoglobals
var (
	version   = "unknown"
	buildTime = "unknown"
)

func main() {
	appConfig, err := config.New()
	if err != nil {
		if errors.Is(err, config.ErrHelp) {
			os.Exit(0)
		}
		log.Fatalf("failed to read app config: %v", err)
	}

	logger, err := ll.New(version, appConfig.Env, appConfig.Logger.Level)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	ctx = environment.CtxWithEnv(ctx, appConfig.Env)
	ctx = environment.CtxWithVersion(ctx, version)
	ctx = environment.CtxWithBuildTime(ctx, buildTime)

	store, err := newStore(ctx, logger, appConfig)
	if err != nil {
		logger.Error("failed to init storage", zap.Error(err))
		return
	}
	defer store.Close() //nolint:errcheck

	// Config validation guarantees both parse.
	loc, _ := appConfig.Alerts.Location()
	hour, minute, _ := appConfig.Alerts.Clock()

	clock := clockwork.NewRealClock()
	m := metrics.New()

	prober := domain.TLSProber{
		Port:             appConfig.Probe.Port,
		ConnectTimeout:   appConfig.Probe.ConnectTimeout,
		HandshakeTimeout: appConfig.Probe.HandshakeTimeout,
		Clock:            clock,
	}

	engine := domain.New(store, newNotifier(logger, appConfig), prober, logger, domain.Options{
		Workers:     appConfig.Refresh.Workers,
		TaskTimeout: appConfig.Refresh.TaskTimeout,
		CacheTTL:    appConfig.Refresh.CacheTTL,
		Thresholds:  appConfig.Alerts.Thresholds,
		Summary:     appConfig.Alerts.Summary,
		Gate:        alert.NewGate(loc, hour, minute, appConfig.Alerts.Window),
		Clock:       clock,
		Metrics:     m,
	})
	if err := engine.Load(ctx, appConfig.Domains); err != nil {
		logger.Error("failed to load domains", zap.Error(err))
		return
	}

	httpServer := http.NewServer(logger, &appConfig.HTTP, engine, m.Handler())
	sched := scheduler.New(logger, engine, clock, scheduler.Options{
		RefreshInterval: appConfig.Refresh.Interval,
		RefreshPoll:     appConfig.Refresh.Poll,
		AlertPoll:       appConfig.Alerts.Poll,
	})

	gr, appctx := errgroup.WithContext(ctx)
	gr.Go(func() error {
		return httpServer.Serve(appctx)
	})
	gr.Go(func() error {
		return sched.Run(appctx)
	})

	if err := gr.Wait(); err != nil {
		logger.Error("application exited with error", zap.Error(err))
	}
}

type closableStore interface {
	storage.Store
	io.Closer
}

func newStore(ctx context.Context, logger *zap.Logger, appConfig *config.AppConfig) (closableStore, error) {
	if appConfig.Storage.Driver == config.DriverPostgres {
		return postgres.New(ctx, logger, &appConfig.Postgres)
	}
	return file.New(logger, appConfig.Storage.Path), nil
}

func newNotifier(logger *zap.Logger, appConfig *config.AppConfig) notify.Notifier {
	var transports notify.Multi

	if c := appConfig.SMTP; c.Host != "" {
		transports = append(transports, notify.NewSMTP(logger, notify.SMTPConfig{
			Host:     c.Host,
			Port:     c.Port,
			Username: c.Username,
			Password: c.Password,
			From:     c.From,
			To:       c.To,
			Timeout:  c.Timeout,
		}))
	}
	if c := appConfig.Webhook; c.URL != "" {
		transports = append(transports, notify.NewWebhook(logger, c.URL, c.Timeout))
	}

	switch len(transports) {
	case 0:
		logger.Warn("no alert transport configured, expiry alerts are disabled")
		return notify.Disabled{}
	case 1:
		return transports[0]
	default:
		return transports
	}
}

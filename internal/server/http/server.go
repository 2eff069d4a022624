package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"gitlab.lucky-team.pro/luckyads/go.ssl-monitor/internal/config"
	"gitlab.lucky-team.pro/luckyads/go.ssl-monitor/internal/entities"
)

//go:generate mockgen -source=server.go -destination=server_mock.go -package=http

// Service is the monitor as seen by the dashboard.
type Service interface {
	ListDomains() entities.Domains
	AddDomain(ctx context.Context, name string) (entities.DomainRecord, error)
	RemoveDomain(ctx context.Context, name string) error
	SetNote(ctx context.Context, name, note string) error
	SendTestAlert(ctx context.Context) error
}

// Server knows how to serve http requests.
type Server struct {
	logger  *zap.Logger
	config  *config.Server
	svc     Service
	metrics http.Handler
}

// NewServer returns new Server that will use passed config.
// To start serving requests call Server.Serve.
func NewServer(logger *zap.Logger, conf *config.Server, svc Service, metrics http.Handler) *Server {
	return &Server{
		logger:  logger,
		config:  conf,
		svc:     svc,
		metrics: metrics,
	}
}

// Serve starts HTTP server. This is a blocking call.
// To stop serving, cancel the passed context.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port)),
		Handler:           s.router(ctx),
		ReadHeaderTimeout: 5 * time.Second,
	}

	e := make(chan error, 1)
	go func() {
		e <- srv.ListenAndServe()
	}()

	s.logger.Info(
		"HTTP server is running",
		zap.String("host", s.config.Host),
		zap.Int("port", s.config.Port),
	)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	case err := <-e:
		return err
	}
}

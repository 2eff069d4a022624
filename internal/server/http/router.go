package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"gitlab.lucky-team.pro/luckyads/go.ssl-monitor/internal/environment"
)

func (s *Server) router(ctx context.Context) http.Handler {
	mux := chi.NewRouter()

	mux.Use(
		middleware.Recoverer,
		middleware.Heartbeat("/check"),
	)

	mux.Get("/deploy/info", deployInfoHandlerFunc(ctx))
	if s.metrics != nil {
		mux.Method(http.MethodGet, "/metrics", s.metrics)
	}

	mux.Route("/api", func(r chi.Router) {
		r.Get("/domains", s.listDomains)
		r.Post("/domains", s.addDomain)
		r.Delete("/domains/{domain}", s.removeDomain)
		r.Put("/domains/{domain}/note", s.setNote)
		r.Post("/notifications/test", s.sendTestAlert)
	})

	return mux
}

func deployInfoHandlerFunc(ctx context.Context) http.HandlerFunc {
	info := map[string]string{
		"service":     environment.ServiceName,
		"environment": environment.EnvFromCtx(ctx).String(),
		"version":     environment.VersionFromCtx(ctx),
		"build_time":  environment.BuildTimeFromCtx(ctx),
	}

	return func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(info) //nolint:errcheck,gosec
	}
}

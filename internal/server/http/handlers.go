package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"gitlab.lucky-team.pro/luckyads/go.ssl-monitor/internal/notify"
	"gitlab.lucky-team.pro/luckyads/go.ssl-monitor/internal/service/domain"
)

const maxBodySize = 1 << 16

var validate = validator.New() //nolint:gochecknoglobals

type addDomainRequest struct {
	Domain string `json:"domain" validate:"required,max=253"`
}

type setNoteRequest struct {
	// Note is a pointer so that a missing note is told apart from clearing it.
	Note *string `json:"note" validate:"required,max=2000"`
}

func (s *Server) listDomains(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.ListDomains())
}

func (s *Server) addDomain(w http.ResponseWriter, r *http.Request) {
	var req addDomainRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rec, err := s.svc.AddDomain(r.Context(), req.Domain)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) removeDomain(w http.ResponseWriter, r *http.Request) {
	name, err := domainParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.svc.RemoveDomain(r.Context(), name); err != nil {
		s.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) setNote(w http.ResponseWriter, r *http.Request) {
	name, err := domainParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req setNoteRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.svc.SetNote(r.Context(), name, *req.Note); err != nil {
		s.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) sendTestAlert(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.SendTestAlert(r.Context()); err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}

func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidDomain):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrDomainNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, notify.ErrNotConfigured):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		s.logger.Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func domainParam(r *http.Request) (string, error) {
	name, err := url.PathUnescape(chi.URLParam(r, "domain"))
	if err != nil {
		return "", fmt.Errorf("invalid domain: %w", err)
	}
	return name, nil
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) error {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck,gosec
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"rentwatch/internal/scan"
	"rentwatch/internal/sites"
)

// scanTimeout bounds a manually triggered batch; per-request fetch timeouts
// apply inside it.
const scanTimeout = 30 * time.Minute

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	if s.runner.Busy() {
		s.respondWithError(w, http.StatusConflict, "A scan is already in progress")
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), scanTimeout)
		defer cancel()
		if _, err := s.runner.Run(ctx); err != nil && !errors.Is(err, scan.ErrScanInProgress) {
			s.logger.Error("manual scan failed", zap.Error(err))
		}
	}()

	s.respondWithJSON(w, http.StatusAccepted, map[string]string{"message": "Scan started"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.pgStore.Stats(r.Context())
	if err != nil {
		s.logger.Error("failed to get stats", zap.Error(err))
		s.respondWithError(w, http.StatusInternalServerError, "Could not retrieve statistics")
		return
	}
	s.respondWithJSON(w, http.StatusOK, stats)
}

func (s *Server) handleListSites(w http.ResponseWriter, r *http.Request) {
	s.respondWithJSON(w, http.StatusOK, map[string]any{
		"sites":   s.registry.All(),
		"enabled": s.registry.EnabledNames(),
	})
}

// addSiteRequest mirrors sites.Site but lets the enabled gate default to
// true when omitted.
type addSiteRequest struct {
	Name      string            `json:"name"`
	Enabled   *bool             `json:"enabled"`
	BaseURL   string            `json:"base_url"`
	SearchURL string            `json:"search_url"`
	Selectors map[string]string `json:"selectors"`
}

func (s *Server) handleAddSite(w http.ResponseWriter, r *http.Request) {
	var req addSiteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	site := sites.Site{
		Name:      req.Name,
		Enabled:   req.Enabled == nil || *req.Enabled,
		BaseURL:   req.BaseURL,
		SearchURL: req.SearchURL,
		Selectors: req.Selectors,
	}
	if err := s.registry.Add(site); err != nil {
		s.respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Info("site added", zap.String("site", site.Name))
	s.respondWithJSON(w, http.StatusCreated, site)
}

func (s *Server) handleEnableSite(w http.ResponseWriter, r *http.Request) {
	s.setSiteEnabled(w, chi.URLParam(r, "name"), true)
}

func (s *Server) handleDisableSite(w http.ResponseWriter, r *http.Request) {
	s.setSiteEnabled(w, chi.URLParam(r, "name"), false)
}

func (s *Server) setSiteEnabled(w http.ResponseWriter, name string, enabled bool) {
	found, err := s.registry.SetEnabled(name, enabled)
	if err != nil {
		s.logger.Error("failed to update site", zap.String("site", name), zap.Error(err))
		s.respondWithError(w, http.StatusInternalServerError, "Could not update site")
		return
	}
	if !found {
		s.respondWithError(w, http.StatusNotFound, "Site not found: "+name)
		return
	}
	s.respondWithJSON(w, http.StatusOK, map[string]any{"name": name, "enabled": enabled})
}

func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	healthStatus := make(map[string]string)
	isHealthy := true

	if err := s.pgStore.Ping(ctx); err != nil {
		healthStatus["postgres"] = "unhealthy"
		isHealthy = false
		s.logger.Error("health check failed for postgres", zap.Error(err))
	} else {
		healthStatus["postgres"] = "healthy"
	}

	if s.redisStore != nil {
		if err := s.redisStore.Ping(ctx); err != nil {
			healthStatus["redis"] = "unhealthy"
			isHealthy = false
			s.logger.Error("health check failed for redis", zap.Error(err))
		} else {
			healthStatus["redis"] = "healthy"
		}
	}

	if !isHealthy {
		s.respondWithJSON(w, http.StatusServiceUnavailable, healthStatus)
		return
	}
	s.respondWithJSON(w, http.StatusOK, healthStatus)
}

// --- Helper Functions ---

func (s *Server) respondWithError(w http.ResponseWriter, code int, message string) {
	s.respondWithJSON(w, code, map[string]string{"error": message})
}

func (s *Server) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

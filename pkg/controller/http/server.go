// Package http exposes the memory API over REST. All handlers delegate to
// the usecase layer; no store is touched directly.
package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mnemo-ai/mnemo/pkg/usecase"
	"github.com/mnemo-ai/mnemo/pkg/utils/logging"
	"github.com/mnemo-ai/mnemo/pkg/utils/safe"
)

type Server struct {
	router *chi.Mux
	uc     *usecase.UseCases
}

func New(uc *usecase.UseCases) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		uc:     uc,
	}

	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/interactions", s.handleCreateInteraction)
		r.Post("/context", s.handleAssembleContext)
		r.Get("/memories", s.handleSearchMemories)
		r.Post("/archival", s.handleTriggerArchival)

		r.Route("/users/{userID}", func(r chi.Router) {
			r.Put("/profile", s.handlePutProfile)
			r.Get("/profile", s.handleGetProfile)
			r.Delete("/session", s.handleClearSession)
			r.Get("/stats", s.handleGetStats)
		})
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

func respondJSON(ctx context.Context, w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	safe.Write(ctx, w, mustMarshal(body))
}

func mustMarshal(body any) []byte {
	data, err := json.Marshal(body)
	if err != nil {
		logging.Default().Error("failed to marshal response", "error", err.Error())
		return []byte(`{}`)
	}
	return data
}

func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

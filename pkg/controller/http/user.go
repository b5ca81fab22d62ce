package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/mnemo-ai/mnemo/pkg/domain/model"
	"github.com/mnemo-ai/mnemo/pkg/domain/types"
	"github.com/mnemo-ai/mnemo/pkg/utils/errutil"
)

type profileRequest struct {
	Name       string   `json:"name"`
	Age        int      `json:"age"`
	Conditions []string `json:"conditions"`
	Interests  []string `json:"interests"`
}

type profileResponse struct {
	UserID     string    `json:"user_id"`
	Name       string    `json:"name"`
	Age        int       `json:"age"`
	Conditions []string  `json:"conditions"`
	Interests  []string  `json:"interests"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (s *Server) handlePutProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(types.ErrInvalidInput, "invalid request body"))
		return
	}

	profile := &model.UserProfile{
		UserID:     model.UserID(chi.URLParam(r, "userID")),
		Name:       req.Name,
		Age:        req.Age,
		Conditions: req.Conditions,
		Interests:  req.Interests,
	}
	if err := s.uc.PutProfile(ctx, profile); err != nil {
		errutil.HandleHTTP(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, toProfileResponse(profile))
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	profile, err := s.uc.GetProfile(ctx, model.UserID(chi.URLParam(r, "userID")))
	if err != nil {
		errutil.HandleHTTP(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, toProfileResponse(profile))
}

func toProfileResponse(profile *model.UserProfile) profileResponse {
	return profileResponse{
		UserID:     profile.UserID.String(),
		Name:       profile.Name,
		Age:        profile.Age,
		Conditions: profile.Conditions,
		Interests:  profile.Interests,
		CreatedAt:  profile.CreatedAt,
		UpdatedAt:  profile.UpdatedAt,
	}
}

func (s *Server) handleClearSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := s.uc.ClearSession(ctx, model.UserID(chi.URLParam(r, "userID"))); err != nil {
		errutil.HandleHTTP(ctx, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type userStatsResponse struct {
	UserID            string    `json:"user_id"`
	ActiveFragments   int       `json:"active_fragments"`
	ArchivedFragments int       `json:"archived_fragments"`
	TotalInteractions int64     `json:"total_interactions"`
	LastInteraction   time.Time `json:"last_interaction,omitempty"`
}

func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := s.uc.GetUserStats(ctx, model.UserID(chi.URLParam(r, "userID")))
	if err != nil {
		errutil.HandleHTTP(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, userStatsResponse{
		UserID:            stats.UserID.String(),
		ActiveFragments:   stats.ActiveFragments,
		ArchivedFragments: stats.ArchivedFragments,
		TotalInteractions: stats.TotalInteractions,
		LastInteraction:   stats.LastInteraction,
	})
}

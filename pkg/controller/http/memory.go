package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mnemo-ai/mnemo/pkg/domain/interfaces"
	"github.com/mnemo-ai/mnemo/pkg/domain/model"
	"github.com/mnemo-ai/mnemo/pkg/domain/types"
	"github.com/mnemo-ai/mnemo/pkg/utils/errutil"
)

type createInteractionRequest struct {
	UserID   string `json:"user_id"`
	Message  string `json:"message"`
	Response string `json:"response"`
}

type createInteractionResponse struct {
	FragmentID string `json:"fragment_id"`
}

func (s *Server) handleCreateInteraction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createInteractionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(types.ErrInvalidInput, "invalid request body"))
		return
	}

	fragmentID, err := s.uc.CreateInteraction(ctx, model.UserID(req.UserID), req.Message, req.Response)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusCreated, createInteractionResponse{
		FragmentID: fragmentID.String(),
	})
}

type assembleContextRequest struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

type contextSegment struct {
	Source string `json:"source"`
	Text   string `json:"text"`
}

type assembleContextResponse struct {
	Segments []contextSegment `json:"segments"`
	Text     string           `json:"text"`
	Size     int              `json:"size"`
	Budget   int              `json:"budget"`
	Degraded []string         `json:"degraded,omitempty"`
}

func (s *Server) handleAssembleContext(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req assembleContextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(types.ErrInvalidInput, "invalid request body"))
		return
	}

	payload, err := s.uc.AssembleContext(ctx, model.UserID(req.UserID), req.Message)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err)
		return
	}

	resp := assembleContextResponse{
		Segments: make([]contextSegment, 0, len(payload.Segments())),
		Text:     payload.Text(),
		Size:     payload.Size(),
		Budget:   payload.Budget(),
		Degraded: payload.Degraded(),
	}
	for _, seg := range payload.Segments() {
		resp.Segments = append(resp.Segments, contextSegment{Source: seg.Source, Text: seg.Text})
	}

	respondJSON(ctx, w, http.StatusOK, resp)
}

type memoryFragment struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	Content        string    `json:"content"`
	Category       string    `json:"category"`
	Importance     int       `json:"importance"`
	Tier           string    `json:"tier"`
	Score          float32   `json:"score,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	LastAccessedAt time.Time `json:"last_accessed_at"`
}

type searchMemoriesResponse struct {
	Memories []memoryFragment `json:"memories"`
}

func (s *Server) handleSearchMemories(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	filter := interfaces.FragmentQueryFilter{}
	for _, raw := range strings.Split(q.Get("categories"), ",") {
		if raw == "" {
			continue
		}
		category, err := types.ParseCategory(raw)
		if err != nil {
			errutil.HandleHTTP(ctx, w, err)
			return
		}
		filter.Categories = append(filter.Categories, category)
	}
	for _, raw := range strings.Split(q.Get("tiers"), ",") {
		if raw == "" {
			continue
		}
		tier, err := types.ParseTier(raw)
		if err != nil {
			errutil.HandleHTTP(ctx, w, err)
			return
		}
		filter.Tiers = append(filter.Tiers, tier)
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			errutil.HandleHTTP(ctx, w, goerr.Wrap(types.ErrInvalidInput, "invalid limit",
				goerr.V("limit", raw)))
			return
		}
		filter.Limit = limit
	}

	results, err := s.uc.SearchMemories(ctx, model.UserID(q.Get("user_id")), q.Get("query"), filter)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err)
		return
	}

	resp := searchMemoriesResponse{Memories: make([]memoryFragment, 0, len(results))}
	for _, result := range results {
		resp.Memories = append(resp.Memories, memoryFragment{
			ID:             result.Fragment.ID.String(),
			UserID:         result.Fragment.UserID.String(),
			Content:        result.Fragment.Content,
			Category:       result.Fragment.Category.String(),
			Importance:     result.Fragment.Importance,
			Tier:           result.Fragment.Tier.String(),
			Score:          result.Score,
			CreatedAt:      result.Fragment.CreatedAt,
			LastAccessedAt: result.Fragment.LastAccessedAt,
		})
	}

	respondJSON(ctx, w, http.StatusOK, resp)
}

type archiveStatsResponse struct {
	Scanned   int    `json:"scanned"`
	Archived  int    `json:"archived"`
	Expired   int    `json:"expired"`
	Deleted   int    `json:"deleted"`
	Conflicts int    `json:"conflicts"`
	Errors    int    `json:"errors"`
	Duration  string `json:"duration"`
}

func (s *Server) handleTriggerArchival(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := s.uc.TriggerArchival(ctx)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, archiveStatsResponse{
		Scanned:   stats.Scanned,
		Archived:  stats.Archived,
		Expired:   stats.Expired,
		Deleted:   stats.Deleted,
		Conflicts: stats.Conflicts,
		Errors:    stats.Errors,
		Duration:  stats.Duration.String(),
	})
}

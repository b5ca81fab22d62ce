// Package assembler builds the bounded context payload consumed by the
// inference call. It merges the session buffer, the user profile and
// semantic search results, and degrades to whatever sources are reachable
// instead of failing on partial-store outages.
package assembler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"

	"github.com/mnemo-ai/mnemo/pkg/domain/interfaces"
	"github.com/mnemo-ai/mnemo/pkg/domain/model"
	"github.com/mnemo-ai/mnemo/pkg/domain/types"
	"github.com/mnemo-ai/mnemo/pkg/utils/async"
	"github.com/mnemo-ai/mnemo/pkg/utils/logging"
)

const (
	// DefaultBudget is the context payload character budget
	DefaultBudget = 4000
	// DefaultTopN is the number of semantic candidates fetched per assembly
	DefaultTopN = 5
	// DefaultThreshold is the minimum cosine similarity for candidates
	DefaultThreshold = 0.75
	// DefaultSemanticTimeout caps the semantic query even when the caller
	// provides no deadline, so no zombie query outlives a request
	DefaultSemanticTimeout = 2 * time.Second
)

// Assembler produces ContextPayloads from the three memory sources
type Assembler struct {
	session         interfaces.SessionStore
	repo            interfaces.Repository
	index           interfaces.SemanticIndex
	embedder        interfaces.Embedder
	budget          int
	sessionTurns    int
	topN            int
	threshold       float32
	semanticTimeout time.Duration
	now             func() time.Time
}

// Option customizes the assembler
type Option func(*Assembler)

// WithBudget sets the payload character budget
func WithBudget(budget int) Option {
	return func(a *Assembler) {
		if budget > 0 {
			a.budget = budget
		}
	}
}

// WithSessionTurns sets how many recent turns are requested
func WithSessionTurns(k int) Option {
	return func(a *Assembler) {
		if k > 0 {
			a.sessionTurns = k
		}
	}
}

// WithTopN sets the number of semantic candidates
func WithTopN(n int) Option {
	return func(a *Assembler) {
		if n > 0 {
			a.topN = n
		}
	}
}

// WithThreshold sets the minimum similarity for semantic candidates
func WithThreshold(threshold float32) Option {
	return func(a *Assembler) {
		a.threshold = threshold
	}
}

// WithSemanticTimeout sets the hard upper timeout of the semantic path
func WithSemanticTimeout(d time.Duration) Option {
	return func(a *Assembler) {
		if d > 0 {
			a.semanticTimeout = d
		}
	}
}

// WithClock injects a clock for tests
func WithClock(now func() time.Time) Option {
	return func(a *Assembler) {
		a.now = now
	}
}

// New creates a context assembler
func New(session interfaces.SessionStore, repo interfaces.Repository, index interfaces.SemanticIndex, embedder interfaces.Embedder, opts ...Option) *Assembler {
	a := &Assembler{
		session:         session,
		repo:            repo,
		index:           index,
		embedder:        embedder,
		budget:          DefaultBudget,
		sessionTurns:    10,
		topN:            DefaultTopN,
		threshold:       DefaultThreshold,
		semanticTimeout: DefaultSemanticTimeout,
		now:             func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// candidate is a scored semantic search hit
type candidate struct {
	fragment *model.Fragment
	score    float32
}

// Assemble builds a payload for the user's current message. All three
// sources are read in parallel; each failed source is recorded as a
// degradation instead of an error. Only when every source fails and the
// payload is empty does Assemble return an error.
func (a *Assembler) Assemble(ctx context.Context, userID model.UserID, message string) (*model.ContextPayload, error) {
	var (
		turns      []model.SessionTurn
		profile    *model.UserProfile
		candidates []candidate

		sessionErr  error
		profileErr  error
		semanticErr error
	)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		turns, sessionErr = a.session.Recent(egCtx, userID, a.sessionTurns)
		return nil
	})
	eg.Go(func() error {
		profile, profileErr = a.repo.Profile().Get(egCtx, userID)
		return nil
	})
	eg.Go(func() error {
		candidates, semanticErr = a.searchCandidates(egCtx, userID, message)
		return nil
	})
	_ = eg.Wait()

	payload := model.NewContextPayload(a.budget)

	// Session turns first: always included, highest priority.
	if sessionErr != nil {
		payload.MarkDegraded(model.SegmentSourceSession)
		logging.From(ctx).Warn("context degraded: session store unavailable",
			"user_id", userID, "error", sessionErr.Error())
	}
	for _, turn := range turns {
		payload.Append(model.SegmentSourceSession, formatTurn(turn))
	}

	if profileErr != nil {
		// A missing profile is not an outage, just nothing to add.
		if !errors.Is(profileErr, types.ErrNotFound) {
			payload.MarkDegraded(model.SegmentSourceProfile)
			logging.From(ctx).Warn("context degraded: profile unavailable",
				"user_id", userID, "error", profileErr.Error())
		}
	} else if profile != nil {
		payload.Append(model.SegmentSourceProfile, profile.Summary())
	}

	if semanticErr != nil {
		payload.MarkDegraded(model.SegmentSourceSemantic)
		logging.From(ctx).Warn("context degraded: semantic search unavailable",
			"user_id", userID, "error", semanticErr.Error())
	}

	included := make([]model.FragmentID, 0, len(candidates))
	for _, c := range candidates {
		text := fmt.Sprintf("Memory (%s): %s", c.fragment.Category, c.fragment.Content)
		if payload.Append(model.SegmentSourceSemantic, text) {
			included = append(included, c.fragment.ID)
		}
	}

	if payload.Empty() && sessionErr != nil && profileErr != nil && semanticErr != nil {
		return nil, goerr.Wrap(types.ErrStoreUnavailable, "all memory sources failed",
			goerr.V("userID", userID))
	}

	a.bumpAccess(ctx, included)

	return payload, nil
}

// searchCandidates embeds the message, queries the index, resolves the
// matched fragments from the structured store and ranks them by
// 0.6*similarity + 0.4*(importance/5), ties broken by recency of access.
// The whole path runs under the semantic timeout in addition to any caller
// deadline.
func (a *Assembler) searchCandidates(ctx context.Context, userID model.UserID, message string) ([]candidate, error) {
	ctx, cancel := context.WithTimeout(ctx, a.semanticTimeout)
	defer cancel()

	vector, err := a.embedder.Embed(ctx, message)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to embed query")
	}

	matches, err := a.index.Query(ctx, userID, vector, a.topN, a.threshold)
	if err != nil {
		return nil, goerr.Wrap(err, "semantic query failed")
	}

	candidates := make([]candidate, 0, len(matches))
	for _, match := range matches {
		fragment, err := a.repo.Fragment().Get(ctx, match.FragmentID)
		if err != nil {
			// Index may be ahead of (or behind) the structured store;
			// eventual consistency makes dangling references acceptable.
			logging.From(ctx).Debug("skipping dangling semantic match",
				"fragment_id", match.FragmentID, "error", err.Error())
			continue
		}
		if fragment.Tier != types.TierActive {
			continue
		}
		candidates = append(candidates, candidate{
			fragment: fragment,
			score:    0.6*match.Score + 0.4*(float32(fragment.Importance)/5),
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].fragment.LastAccessedAt.After(candidates[j].fragment.LastAccessedAt)
	})
	return candidates, nil
}

// bumpAccess updates LastAccessedAt for every included fragment without
// blocking the response
func (a *Assembler) bumpAccess(ctx context.Context, ids []model.FragmentID) {
	if len(ids) == 0 {
		return
	}
	at := a.now()

	async.Dispatch(ctx, func(ctx context.Context) error {
		for _, id := range ids {
			if err := a.repo.Fragment().TouchAccess(ctx, id, at); err != nil {
				logging.From(ctx).Warn("failed to bump fragment access",
					"fragment_id", id, "error", err.Error())
			}
		}
		return nil
	})
}

func formatTurn(turn model.SessionTurn) string {
	switch turn.Role {
	case types.RoleUser:
		return "User: " + turn.Text
	default:
		return "AI: " + turn.Text
	}
}

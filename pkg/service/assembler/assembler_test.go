package assembler_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/mnemo-ai/mnemo/pkg/domain/interfaces"
	"github.com/mnemo-ai/mnemo/pkg/domain/model"
	"github.com/mnemo-ai/mnemo/pkg/domain/types"
	"github.com/mnemo-ai/mnemo/pkg/repository/memory"
	"github.com/mnemo-ai/mnemo/pkg/service/assembler"
	"github.com/mnemo-ai/mnemo/pkg/service/embedding"
	"github.com/m-mizutani/goerr/v2"
)

// stubIndex returns canned matches regardless of the query vector
type stubIndex struct {
	matches []interfaces.Match
	err     error
	delay   time.Duration
}

func (s *stubIndex) Upsert(ctx context.Context, vectorID string, vector []float32, meta interfaces.VectorMetadata) error {
	return nil
}

func (s *stubIndex) Query(ctx context.Context, userID model.UserID, vector []float32, topN int, threshold float32) ([]interfaces.Match, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	if len(s.matches) > topN {
		return s.matches[:topN], nil
	}
	return s.matches, nil
}

func (s *stubIndex) Delete(ctx context.Context, vectorID string) error {
	return nil
}

// errSession always fails
type errSession struct{}

func (errSession) Append(ctx context.Context, turns ...model.SessionTurn) error {
	return goerr.Wrap(types.ErrStoreUnavailable, "session down")
}

func (errSession) Recent(ctx context.Context, userID model.UserID, k int) ([]model.SessionTurn, error) {
	return nil, goerr.Wrap(types.ErrStoreUnavailable, "session down")
}

func (errSession) Clear(ctx context.Context, userID model.UserID) error {
	return goerr.Wrap(types.ErrStoreUnavailable, "session down")
}

// brokenProfiles overrides one sub-repository of a working repository
type brokenProfiles struct {
	interfaces.Repository
}

type errProfileRepo struct{}

func (errProfileRepo) Put(ctx context.Context, profile *model.UserProfile) error {
	return goerr.Wrap(types.ErrStoreUnavailable, "profiles down")
}

func (errProfileRepo) Get(ctx context.Context, userID model.UserID) (*model.UserProfile, error) {
	return nil, goerr.Wrap(types.ErrStoreUnavailable, "profiles down")
}

func (errProfileRepo) Delete(ctx context.Context, userID model.UserID) error {
	return goerr.Wrap(types.ErrStoreUnavailable, "profiles down")
}

func (brokenProfiles) Profile() interfaces.ProfileRepository {
	return errProfileRepo{}
}

func seedUser(t *testing.T, repo interfaces.Repository, session interfaces.SessionStore) {
	t.Helper()
	ctx := context.Background()

	gt.NoError(t, repo.Profile().Put(ctx, &model.UserProfile{
		UserID:    "user-1",
		Name:      "Mia",
		Age:       82,
		Interests: []string{"gardening"},
	})).Required()

	now := time.Now().UTC()
	gt.NoError(t, session.Append(ctx,
		model.SessionTurn{UserID: "user-1", Role: types.RoleUser, Text: "good morning", Timestamp: now},
		model.SessionTurn{UserID: "user-1", Role: types.RoleAI, Text: "good morning Mia", Timestamp: now},
	)).Required()
}

func seedFragment(t *testing.T, repo interfaces.Repository, id model.FragmentID, content string, importance int, tier types.Tier) {
	t.Helper()
	fragment := &model.Fragment{
		ID:         id,
		UserID:     "user-1",
		Content:    content,
		Category:   types.CategoryPreference,
		Importance: importance,
		Tier:       types.TierActive,
	}
	gt.NoError(t, repo.Fragment().Insert(context.Background(), fragment)).Required()
	if tier != types.TierActive {
		gt.NoError(t, repo.Fragment().UpdateTier(context.Background(), id, tier, 1)).Required()
	}
}

func TestAssembleOrdering(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	session := memory.NewSessionStore(10, time.Hour)
	seedUser(t, repo, session)
	seedFragment(t, repo, "f1", "User: I love Earl Grey\nAI: noted", 4, types.TierActive)

	index := &stubIndex{matches: []interfaces.Match{{FragmentID: "f1", Score: 0.9}}}
	a := assembler.New(session, repo, index, embedding.NewMock())

	payload, err := a.Assemble(ctx, "user-1", "what tea do I like?")
	gt.NoError(t, err).Required()
	gt.Bool(t, payload.IsDegraded()).False()

	segments := payload.Segments()
	gt.Array(t, segments).Length(4)
	gt.Value(t, segments[0].Source).Equal(model.SegmentSourceSession)
	gt.Value(t, segments[0].Text).Equal("User: good morning")
	gt.Value(t, segments[1].Text).Equal("AI: good morning Mia")
	gt.Value(t, segments[2].Source).Equal(model.SegmentSourceProfile)
	gt.Bool(t, strings.HasPrefix(segments[2].Text, "Profile: Mia")).True()
	gt.Value(t, segments[3].Source).Equal(model.SegmentSourceSemantic)
	gt.Bool(t, strings.HasPrefix(segments[3].Text, "Memory (preference): ")).True()
}

func TestAssembleBudget(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	session := memory.NewSessionStore(10, time.Hour)
	seedUser(t, repo, session)
	seedFragment(t, repo, "f1", strings.Repeat("x", 500), 5, types.TierActive)

	index := &stubIndex{matches: []interfaces.Match{{FragmentID: "f1", Score: 0.95}}}

	// Budget fits the session turns but not the large memory segment.
	a := assembler.New(session, repo, index, embedding.NewMock(),
		assembler.WithBudget(120))

	payload, err := a.Assemble(ctx, "user-1", "hello")
	gt.NoError(t, err).Required()

	for _, segment := range payload.Segments() {
		gt.Value(t, segment.Source).NotEqual(model.SegmentSourceSemantic)
	}
	gt.Bool(t, payload.Size() <= 120).True()
}

func TestAssembleScoring(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	session := memory.NewSessionStore(10, time.Hour)
	seedUser(t, repo, session)

	// f1: similarity 0.90, importance 1 -> 0.6*0.90 + 0.4*0.2 = 0.62
	// f2: similarity 0.80, importance 5 -> 0.6*0.80 + 0.4*1.0 = 0.88
	seedFragment(t, repo, "f1", "memory one", 1, types.TierActive)
	seedFragment(t, repo, "f2", "memory two", 5, types.TierActive)

	index := &stubIndex{matches: []interfaces.Match{
		{FragmentID: "f1", Score: 0.90},
		{FragmentID: "f2", Score: 0.80},
	}}
	a := assembler.New(session, repo, index, embedding.NewMock())

	payload, err := a.Assemble(ctx, "user-1", "hello")
	gt.NoError(t, err).Required()

	var semantic []string
	for _, segment := range payload.Segments() {
		if segment.Source == model.SegmentSourceSemantic {
			semantic = append(semantic, segment.Text)
		}
	}
	gt.Array(t, semantic).Length(2)
	gt.Bool(t, strings.Contains(semantic[0], "memory two")).True()
	gt.Bool(t, strings.Contains(semantic[1], "memory one")).True()
}

func TestAssembleSkipsInactiveFragments(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	session := memory.NewSessionStore(10, time.Hour)
	seedUser(t, repo, session)
	seedFragment(t, repo, "f1", "archived memory", 5, types.TierArchive)

	index := &stubIndex{matches: []interfaces.Match{{FragmentID: "f1", Score: 0.99}}}
	a := assembler.New(session, repo, index, embedding.NewMock())

	payload, err := a.Assemble(ctx, "user-1", "hello")
	gt.NoError(t, err).Required()

	for _, segment := range payload.Segments() {
		gt.Value(t, segment.Source).NotEqual(model.SegmentSourceSemantic)
	}
}

func TestAssembleDegradation(t *testing.T) {
	t.Run("index failure degrades semantic only", func(t *testing.T) {
		ctx := context.Background()
		repo := memory.New()
		session := memory.NewSessionStore(10, time.Hour)
		seedUser(t, repo, session)

		index := &stubIndex{err: goerr.Wrap(types.ErrStoreUnavailable, "index down")}
		a := assembler.New(session, repo, index, embedding.NewMock())

		payload, err := a.Assemble(ctx, "user-1", "hello")
		gt.NoError(t, err).Required()
		gt.Bool(t, payload.IsDegraded()).True()
		gt.Array(t, payload.Degraded()).Length(1)
		gt.Value(t, payload.Degraded()[0]).Equal(model.SegmentSourceSemantic)
		gt.Bool(t, payload.Empty()).False()
	})

	t.Run("slow index is abandoned at the timeout", func(t *testing.T) {
		ctx := context.Background()
		repo := memory.New()
		session := memory.NewSessionStore(10, time.Hour)
		seedUser(t, repo, session)

		index := &stubIndex{
			delay:   200 * time.Millisecond,
			matches: []interfaces.Match{},
		}
		a := assembler.New(session, repo, index, embedding.NewMock(),
			assembler.WithSemanticTimeout(50*time.Millisecond))

		start := time.Now()
		payload, err := a.Assemble(ctx, "user-1", "hello")
		elapsed := time.Since(start)

		gt.NoError(t, err).Required()
		gt.Bool(t, elapsed < 150*time.Millisecond).True()
		gt.Bool(t, payload.IsDegraded()).True()
		gt.Value(t, payload.Degraded()[0]).Equal(model.SegmentSourceSemantic)
	})

	t.Run("missing profile is not a degradation", func(t *testing.T) {
		ctx := context.Background()
		repo := memory.New()
		session := memory.NewSessionStore(10, time.Hour)
		now := time.Now().UTC()
		gt.NoError(t, session.Append(ctx,
			model.SessionTurn{UserID: "user-9", Role: types.RoleUser, Text: "hi", Timestamp: now},
		)).Required()

		a := assembler.New(session, repo, &stubIndex{}, embedding.NewMock())

		payload, err := a.Assemble(ctx, "user-9", "hello")
		gt.NoError(t, err).Required()
		gt.Bool(t, payload.IsDegraded()).False()
		for _, segment := range payload.Segments() {
			gt.Value(t, segment.Source).NotEqual(model.SegmentSourceProfile)
		}
	})

	t.Run("total failure returns error", func(t *testing.T) {
		ctx := context.Background()
		repo := brokenProfiles{memory.New()}
		index := &stubIndex{err: goerr.Wrap(types.ErrStoreUnavailable, "index down")}

		a := assembler.New(errSession{}, repo, index, embedding.NewMock())

		_, err := a.Assemble(ctx, "user-1", "hello")
		gt.Error(t, err).Is(types.ErrStoreUnavailable)
	})
}

func TestAssembleBumpsAccess(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	session := memory.NewSessionStore(10, time.Hour)
	seedUser(t, repo, session)
	seedFragment(t, repo, "f1", "memory one", 3, types.TierActive)

	index := &stubIndex{matches: []interfaces.Match{{FragmentID: "f1", Score: 0.9}}}
	a := assembler.New(session, repo, index, embedding.NewMock())

	_, err := a.Assemble(ctx, "user-1", "hello")
	gt.NoError(t, err).Required()

	// The access bump is asynchronous; poll until it lands.
	deadline := time.Now().Add(2 * time.Second)
	for {
		fragment, err := repo.Fragment().Get(ctx, "f1")
		gt.NoError(t, err).Required()
		if fragment.Version > 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("access bump did not happen in time")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

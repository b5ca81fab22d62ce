// Package usecase is the single entry point for all memory operations. The
// HTTP controller and CLI talk only to UseCases; the stores, index and
// services behind it are wired once at startup.
package usecase

import (
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/m-mizutani/goerr/v2"
	"github.com/mnemo-ai/mnemo/pkg/domain/interfaces"
	"github.com/mnemo-ai/mnemo/pkg/service/archival"
	"github.com/mnemo-ai/mnemo/pkg/service/assembler"
	"github.com/mnemo-ai/mnemo/pkg/service/classifier"
)

const (
	profileCacheTTL     = 5 * time.Minute
	profileCacheEntries = 10_000
)

type UseCases struct {
	repo       interfaces.Repository
	session    interfaces.SessionStore
	index      interfaces.SemanticIndex
	embedder   interfaces.Embedder
	classifier *classifier.Classifier
	assembler  *assembler.Assembler
	archiver   *archival.Worker

	profileCache *ristretto.Cache
	now          func() time.Time
}

type Option func(*UseCases)

// WithClassifier overrides the default keyword-fallback classifier
func WithClassifier(c *classifier.Classifier) Option {
	return func(uc *UseCases) {
		uc.classifier = c
	}
}

// WithAssembler overrides the default context assembler
func WithAssembler(a *assembler.Assembler) Option {
	return func(uc *UseCases) {
		uc.assembler = a
	}
}

// WithArchivalWorker overrides the default archival worker
func WithArchivalWorker(w *archival.Worker) Option {
	return func(uc *UseCases) {
		uc.archiver = w
	}
}

// WithClock injects a clock for tests
func WithClock(now func() time.Time) Option {
	return func(uc *UseCases) {
		uc.now = now
	}
}

func New(repo interfaces.Repository, session interfaces.SessionStore, index interfaces.SemanticIndex, embedder interfaces.Embedder, opts ...Option) (*UseCases, error) {
	uc := &UseCases{
		repo:     repo,
		session:  session,
		index:    index,
		embedder: embedder,
		now:      func() time.Time { return time.Now().UTC() },
	}

	for _, opt := range opts {
		opt(uc)
	}

	if uc.classifier == nil {
		uc.classifier = classifier.New(nil)
	}
	if uc.assembler == nil {
		uc.assembler = assembler.New(session, repo, index, embedder)
	}
	if uc.archiver == nil {
		uc.archiver = archival.New(repo, index)
	}

	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: profileCacheEntries * 10,
		MaxCost:     profileCacheEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create profile cache")
	}
	uc.profileCache = cache

	return uc, nil
}

// Archiver exposes the archival worker so the server entry point can start
// and stop its background loop
func (uc *UseCases) Archiver() *archival.Worker {
	return uc.archiver
}

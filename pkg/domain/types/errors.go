package types

import "github.com/m-mizutani/goerr/v2"

// Error taxonomy shared across stores and services. Adapters wrap transient
// backend failures with ErrStoreUnavailable so that read paths can degrade
// and write paths can retry without inspecting backend-specific errors.
var (
	// ErrNotFound indicates the requested entity does not exist
	ErrNotFound = goerr.New("not found")

	// ErrInvalidInput indicates a request that is rejected immediately and
	// must not be retried
	ErrInvalidInput = goerr.New("invalid input")

	// ErrStoreUnavailable indicates a transient backing-store failure
	ErrStoreUnavailable = goerr.New("store unavailable")

	// ErrEmbeddingFailure indicates the embedding service failed. It is
	// non-fatal: classification falls back to keyword rules and the vector
	// upsert is retried.
	ErrEmbeddingFailure = goerr.New("embedding failure")

	// ErrArchivalConflict indicates an optimistic version check failed
	// during a tier transition. The fragment is skipped for the current
	// archival cycle and retried on the next one.
	ErrArchivalConflict = goerr.New("archival conflict")
)

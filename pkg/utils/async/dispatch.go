package async

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mnemo-ai/mnemo/pkg/utils/logging"
)

// Dispatch runs handler in a new goroutine detached from the caller's
// cancellation. The request logger is preserved so background work (access
// bumps, embedding upserts) stays attributable. Errors and panics are
// logged, never propagated: fire-and-forget work must not fail the request
// that spawned it.
func Dispatch(ctx context.Context, handler func(ctx context.Context) error) {
	bgCtx := logging.With(context.Background(), logging.From(ctx))

	go func() {
		defer func() {
			if r := recover(); r != nil {
				logging.From(bgCtx).Error("panic in async handler", "panic", r)
			}
		}()

		if err := handler(bgCtx); err != nil {
			logging.From(bgCtx).Error("async handler failed", "error", goerr.Unwrap(err))
		}
	}()
}

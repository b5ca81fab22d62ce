package usecase

import (
	"context"

	"github.com/mnemo-ai/mnemo/pkg/domain/model"
)

// TriggerArchival runs one synchronous archival cycle. Used by ops tooling;
// safe to call while the background worker is running, since both sides use
// optimistic version checks.
func (uc *UseCases) TriggerArchival(ctx context.Context) (*model.ArchiveStats, error) {
	return uc.archiver.RunOnce(ctx)
}

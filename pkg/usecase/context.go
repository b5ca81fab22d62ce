package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mnemo-ai/mnemo/pkg/domain/model"
	"github.com/mnemo-ai/mnemo/pkg/domain/types"
)

// AssembleContext builds the prompt context for the next model call. The
// payload degrades source by source under store failures; an error is
// returned only when nothing at all could be gathered.
func (uc *UseCases) AssembleContext(ctx context.Context, userID model.UserID, message string) (*model.ContextPayload, error) {
	if userID == "" {
		return nil, goerr.Wrap(types.ErrInvalidInput, "user ID is required")
	}
	return uc.assembler.Assemble(ctx, userID, message)
}

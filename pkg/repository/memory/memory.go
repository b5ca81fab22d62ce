// Package memory provides an in-process Repository implementation used for
// development and tests. It mirrors the semantics of the Firestore backend,
// including optimistic version checks on tier transitions.
package memory

import (
	"github.com/mnemo-ai/mnemo/pkg/domain/interfaces"
)

// Repository is the in-memory structured store
type Repository struct {
	fragments    *fragmentRepository
	profiles     *profileRepository
	interactions *interactionLogRepository
}

var _ interfaces.Repository = &Repository{}

// New creates an empty in-memory repository
func New() *Repository {
	return &Repository{
		fragments:    newFragmentRepository(),
		profiles:     newProfileRepository(),
		interactions: newInteractionLogRepository(),
	}
}

func (r *Repository) Fragment() interfaces.FragmentRepository {
	return r.fragments
}

func (r *Repository) Profile() interfaces.ProfileRepository {
	return r.profiles
}

func (r *Repository) InteractionLog() interfaces.InteractionLogRepository {
	return r.interactions
}

// Close is a no-op for the in-memory backend
func (r *Repository) Close() error {
	return nil
}

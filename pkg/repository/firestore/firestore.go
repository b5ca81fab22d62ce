// Package firestore provides the durable Repository implementation backed
// by Cloud Firestore. Fragments carry a version field used for optimistic
// concurrency between the archival scheduler and live access bumps.
package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/mnemo-ai/mnemo/pkg/domain/interfaces"
	"github.com/mnemo-ai/mnemo/pkg/domain/types"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	collectionFragments       = "memory_fragments"
	collectionProfiles        = "user_profiles"
	collectionInteractionLogs = "interaction_logs"
)

// Repository is the Firestore-backed structured store
type Repository struct {
	client       *firestore.Client
	fragments    *fragmentRepository
	profiles     *profileRepository
	interactions *interactionLogRepository
}

var _ interfaces.Repository = &Repository{}

// New creates a Firestore repository for the given project and database
func New(ctx context.Context, projectID, databaseID string) (*Repository, error) {
	var client *firestore.Client
	var err error
	if databaseID != "" {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	} else {
		client, err = firestore.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID),
			goerr.V("databaseID", databaseID))
	}

	return &Repository{
		client:       client,
		fragments:    &fragmentRepository{client: client},
		profiles:     &profileRepository{client: client},
		interactions: &interactionLogRepository{client: client},
	}, nil
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

// Close releases the underlying Firestore client
func (r *Repository) Close() error {
	return r.client.Close()
}

// wrapStoreErr maps Firestore/gRPC errors onto the shared error taxonomy
func wrapStoreErr(err error, msg string, values ...goerr.Option) error {
	switch status.Code(err) {
	case codes.NotFound:
		return goerr.Wrap(types.ErrNotFound, msg, values...)
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted:
		return goerr.Wrap(types.ErrStoreUnavailable, msg,
			append(values, goerr.V("cause", err.Error()))...)
	default:
		return goerr.Wrap(err, msg, values...)
	}
}

package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/mnemo-ai/mnemo/pkg/domain/model"
	"github.com/mnemo-ai/mnemo/pkg/domain/types"
	"google.golang.org/api/iterator"
)

type interactionLogDoc struct {
	ID             string    `firestore:"ID"`
	UserID         string    `firestore:"UserID"`
	UserMessage    string    `firestore:"UserMessage"`
	AIResponse     string    `firestore:"AIResponse"`
	ResponseTimeMS int64     `firestore:"ResponseTimeMS"`
	CreatedAt      time.Time `firestore:"CreatedAt"`
}

type interactionLogRepository struct {
	client *firestore.Client
}

func (r *interactionLogRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(collectionInteractionLogs)
}

func (r *interactionLogRepository) Append(ctx context.Context, log *model.InteractionLog) error {
	if log.UserID == "" {
		return goerr.Wrap(types.ErrInvalidInput, "interaction log user ID is required")
	}

	stored := *log
	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}

	doc := &interactionLogDoc{
		ID:             stored.ID,
		UserID:         string(stored.UserID),
		UserMessage:    stored.UserMessage,
		AIResponse:     stored.AIResponse,
		ResponseTimeMS: stored.ResponseTime.Milliseconds(),
		CreatedAt:      stored.CreatedAt,
	}
	if _, err := r.collection().Doc(stored.ID).Create(ctx, doc); err != nil {
		return wrapStoreErr(err, "failed to append interaction log", goerr.V("userID", log.UserID))
	}
	return nil
}

func (r *interactionLogRepository) CountByUser(ctx context.Context, userID model.UserID) (int64, error) {
	iter := r.collection().Where("UserID", "==", string(userID)).Documents(ctx)
	defer iter.Stop()

	var count int64
	for {
		_, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, wrapStoreErr(err, "failed to count interaction logs", goerr.V("userID", userID))
		}
		count++
	}
	return count, nil
}

func (r *interactionLogRepository) LastByUser(ctx context.Context, userID model.UserID) (*model.InteractionLog, error) {
	iter := r.collection().
		Where("UserID", "==", string(userID)).
		OrderBy("CreatedAt", firestore.Desc).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, goerr.Wrap(types.ErrNotFound, "no interactions logged", goerr.V("userID", userID))
	}
	if err != nil {
		return nil, wrapStoreErr(err, "failed to get last interaction", goerr.V("userID", userID))
	}

	var d interactionLogDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal interaction log")
	}
	return &model.InteractionLog{
		ID:           d.ID,
		UserID:       model.UserID(d.UserID),
		UserMessage:  d.UserMessage,
		AIResponse:   d.AIResponse,
		ResponseTime: time.Duration(d.ResponseTimeMS) * time.Millisecond,
		CreatedAt:    d.CreatedAt,
	}, nil
}

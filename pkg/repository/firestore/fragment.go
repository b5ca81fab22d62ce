package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/mnemo-ai/mnemo/pkg/domain/interfaces"
	"github.com/mnemo-ai/mnemo/pkg/domain/model"
	"github.com/mnemo-ai/mnemo/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// fragmentDoc is the Firestore document representation of model.Fragment
type fragmentDoc struct {
	ID             string    `firestore:"ID"`
	UserID         string    `firestore:"UserID"`
	Content        string    `firestore:"Content"`
	Category       string    `firestore:"Category"`
	Importance     int       `firestore:"Importance"`
	EmbeddingRef   string    `firestore:"EmbeddingRef"`
	CreatedAt      time.Time `firestore:"CreatedAt"`
	LastAccessedAt time.Time `firestore:"LastAccessedAt"`
	Tier           string    `firestore:"Tier"`
	Version        int64     `firestore:"Version"`
}

func toFragmentDoc(f *model.Fragment) *fragmentDoc {
	return &fragmentDoc{
		ID:             string(f.ID),
		UserID:         string(f.UserID),
		Content:        f.Content,
		Category:       string(f.Category),
		Importance:     f.Importance,
		EmbeddingRef:   f.EmbeddingRef,
		CreatedAt:      f.CreatedAt,
		LastAccessedAt: f.LastAccessedAt,
		Tier:           string(f.Tier),
		Version:        f.Version,
	}
}

func fromFragmentDoc(d *fragmentDoc) *model.Fragment {
	return &model.Fragment{
		ID:             model.FragmentID(d.ID),
		UserID:         model.UserID(d.UserID),
		Content:        d.Content,
		Category:       types.Category(d.Category),
		Importance:     d.Importance,
		EmbeddingRef:   d.EmbeddingRef,
		CreatedAt:      d.CreatedAt,
		LastAccessedAt: d.LastAccessedAt,
		Tier:           types.Tier(d.Tier),
		Version:        d.Version,
	}
}

type fragmentRepository struct {
	client *firestore.Client
}

func (r *fragmentRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(collectionFragments)
}

func (r *fragmentRepository) Insert(ctx context.Context, fragment *model.Fragment) error {
	if fragment.ID == "" {
		fragment.ID = model.NewFragmentID()
	}
	now := time.Now().UTC()
	if fragment.CreatedAt.IsZero() {
		fragment.CreatedAt = now
	}
	if fragment.LastAccessedAt.IsZero() {
		fragment.LastAccessedAt = fragment.CreatedAt
	}
	if fragment.Version == 0 {
		fragment.Version = 1
	}
	if err := fragment.Validate(); err != nil {
		return err
	}

	docRef := r.collection().Doc(string(fragment.ID))
	if _, err := docRef.Create(ctx, toFragmentDoc(fragment)); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return goerr.Wrap(types.ErrInvalidInput, "fragment already exists",
				goerr.V("fragmentID", fragment.ID))
		}
		return wrapStoreErr(err, "failed to insert fragment", goerr.V("fragmentID", fragment.ID))
	}
	return nil
}

func (r *fragmentRepository) Get(ctx context.Context, id model.FragmentID) (*model.Fragment, error) {
	doc, err := r.collection().Doc(string(id)).Get(ctx)
	if err != nil {
		return nil, wrapStoreErr(err, "failed to get fragment", goerr.V("fragmentID", id))
	}

	var d fragmentDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal fragment", goerr.V("fragmentID", id))
	}
	return fromFragmentDoc(&d), nil
}

func (r *fragmentRepository) QueryByUser(ctx context.Context, userID model.UserID, filter interfaces.FragmentQueryFilter) ([]*model.Fragment, error) {
	q := r.collection().
		Where("UserID", "==", string(userID)).
		OrderBy("CreatedAt", firestore.Desc)

	if len(filter.Categories) == 1 {
		q = q.Where("Category", "==", string(filter.Categories[0]))
	}
	if len(filter.Tiers) == 1 {
		q = q.Where("Tier", "==", string(filter.Tiers[0]))
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	fragments := make([]*model.Fragment, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, wrapStoreErr(err, "failed to iterate fragments", goerr.V("userID", userID))
		}

		var d fragmentDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal fragment")
		}
		fragment := fromFragmentDoc(&d)

		// Multi-value filters are applied client side; Firestore composite
		// "in" queries would need extra indexes.
		if !matchesMultiFilter(fragment, filter) {
			continue
		}
		fragments = append(fragments, fragment)
	}
	return fragments, nil
}

func matchesMultiFilter(f *model.Fragment, filter interfaces.FragmentQueryFilter) bool {
	if len(filter.Categories) > 1 {
		found := false
		for _, c := range filter.Categories {
			if f.Category == c {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(filter.Tiers) > 1 {
		found := false
		for _, t := range filter.Tiers {
			if f.Tier == t {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (r *fragmentRepository) UpdateTier(ctx context.Context, id model.FragmentID, tier types.Tier, expectedVersion int64) error {
	docRef := r.collection().Doc(string(id))

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			return wrapStoreErr(err, "failed to get fragment for tier update", goerr.V("fragmentID", id))
		}

		var d fragmentDoc
		if err := doc.DataTo(&d); err != nil {
			return goerr.Wrap(err, "failed to unmarshal fragment", goerr.V("fragmentID", id))
		}

		if d.Version != expectedVersion {
			return goerr.Wrap(types.ErrArchivalConflict, "fragment version mismatch",
				goerr.V("fragmentID", id),
				goerr.V("expected", expectedVersion),
				goerr.V("actual", d.Version))
		}
		if !types.Tier(d.Tier).CanTransitionTo(tier) {
			return goerr.Wrap(types.ErrInvalidInput, "tier transition not allowed",
				goerr.V("fragmentID", id),
				goerr.V("from", d.Tier),
				goerr.V("to", tier))
		}

		return tx.Update(docRef, []firestore.Update{
			{Path: "Tier", Value: string(tier)},
			{Path: "Version", Value: d.Version + 1},
		})
	})
	if err != nil {
		return err
	}
	return nil
}

func (r *fragmentRepository) TouchAccess(ctx context.Context, id model.FragmentID, at time.Time) error {
	docRef := r.collection().Doc(string(id))

	return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			return wrapStoreErr(err, "failed to get fragment for access bump", goerr.V("fragmentID", id))
		}

		var d fragmentDoc
		if err := doc.DataTo(&d); err != nil {
			return goerr.Wrap(err, "failed to unmarshal fragment", goerr.V("fragmentID", id))
		}

		updates := []firestore.Update{
			{Path: "Version", Value: d.Version + 1},
		}
		if at.After(d.LastAccessedAt) {
			updates = append(updates, firestore.Update{Path: "LastAccessedAt", Value: at})
		}
		return tx.Update(docRef, updates)
	})
}

func (r *fragmentRepository) Delete(ctx context.Context, id model.FragmentID) error {
	docRef := r.collection().Doc(string(id))

	if _, err := docRef.Get(ctx); err != nil {
		return wrapStoreErr(err, "failed to get fragment for delete", goerr.V("fragmentID", id))
	}
	if _, err := docRef.Delete(ctx); err != nil {
		return wrapStoreErr(err, "failed to delete fragment", goerr.V("fragmentID", id))
	}
	return nil
}

func (r *fragmentRepository) ListByTierLastAccessedBefore(ctx context.Context, tier types.Tier, cutoff time.Time, limit int) ([]*model.Fragment, error) {
	q := r.collection().
		Where("Tier", "==", string(tier)).
		Where("LastAccessedAt", "<", cutoff).
		OrderBy("LastAccessedAt", firestore.Asc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	fragments := make([]*model.Fragment, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, wrapStoreErr(err, "failed to iterate archival candidates", goerr.V("tier", tier))
		}

		var d fragmentDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal fragment")
		}
		fragments = append(fragments, fromFragmentDoc(&d))
	}
	return fragments, nil
}

func (r *fragmentRepository) CountByUserAndTier(ctx context.Context, userID model.UserID, tier types.Tier) (int, error) {
	iter := r.collection().
		Where("UserID", "==", string(userID)).
		Where("Tier", "==", string(tier)).
		Documents(ctx)
	defer iter.Stop()

	count := 0
	for {
		_, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, wrapStoreErr(err, "failed to count fragments", goerr.V("userID", userID))
		}
		count++
	}
	return count, nil
}

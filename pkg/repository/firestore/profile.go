package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/mnemo-ai/mnemo/pkg/domain/model"
)

type profileDoc struct {
	UserID     string    `firestore:"UserID"`
	Name       string    `firestore:"Name"`
	Age        int       `firestore:"Age"`
	Conditions []string  `firestore:"Conditions"`
	Interests  []string  `firestore:"Interests"`
	CreatedAt  time.Time `firestore:"CreatedAt"`
	UpdatedAt  time.Time `firestore:"UpdatedAt"`
}

func toProfileDoc(p *model.UserProfile) *profileDoc {
	return &profileDoc{
		UserID:     string(p.UserID),
		Name:       p.Name,
		Age:        p.Age,
		Conditions: p.Conditions,
		Interests:  p.Interests,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

func fromProfileDoc(d *profileDoc) *model.UserProfile {
	return &model.UserProfile{
		UserID:     model.UserID(d.UserID),
		Name:       d.Name,
		Age:        d.Age,
		Conditions: d.Conditions,
		Interests:  d.Interests,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

type profileRepository struct {
	client *firestore.Client
}

func (r *profileRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(collectionProfiles)
}

func (r *profileRepository) Put(ctx context.Context, profile *model.UserProfile) error {
	if err := profile.Validate(); err != nil {
		return err
	}

	now := time.Now().UTC()
	stored := *profile
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now

	docRef := r.collection().Doc(string(stored.UserID))
	if _, err := docRef.Set(ctx, toProfileDoc(&stored)); err != nil {
		return wrapStoreErr(err, "failed to put profile", goerr.V("userID", profile.UserID))
	}
	return nil
}

func (r *profileRepository) Get(ctx context.Context, userID model.UserID) (*model.UserProfile, error) {
	doc, err := r.collection().Doc(string(userID)).Get(ctx)
	if err != nil {
		return nil, wrapStoreErr(err, "failed to get profile", goerr.V("userID", userID))
	}

	var d profileDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal profile", goerr.V("userID", userID))
	}
	return fromProfileDoc(&d), nil
}

func (r *profileRepository) Delete(ctx context.Context, userID model.UserID) error {
	docRef := r.collection().Doc(string(userID))

	if _, err := docRef.Get(ctx); err != nil {
		return wrapStoreErr(err, "failed to get profile for delete", goerr.V("userID", userID))
	}
	if _, err := docRef.Delete(ctx); err != nil {
		return wrapStoreErr(err, "failed to delete profile", goerr.V("userID", userID))
	}
	return nil
}

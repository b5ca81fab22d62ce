package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/mnemo-ai/mnemo/pkg/domain/types"
)

func TestParseCategory(t *testing.T) {
	t.Run("accepts all known categories", func(t *testing.T) {
		for _, c := range types.AllCategories() {
			parsed, err := types.ParseCategory(c.String())
			gt.NoError(t, err)
			gt.Value(t, parsed).Equal(c)
		}
	})

	t.Run("rejects unknown category", func(t *testing.T) {
		_, err := types.ParseCategory("finance")
		gt.Error(t, err)
		gt.Error(t, err).Is(types.ErrInvalidInput)
	})

	t.Run("rejects empty string", func(t *testing.T) {
		_, err := types.ParseCategory("")
		gt.Error(t, err)
	})
}

func TestTierTransitions(t *testing.T) {
	t.Run("forward transitions are allowed", func(t *testing.T) {
		gt.Bool(t, types.TierActive.CanTransitionTo(types.TierArchive)).True()
		gt.Bool(t, types.TierArchive.CanTransitionTo(types.TierExpired)).True()
	})

	t.Run("backward and skipping transitions are rejected", func(t *testing.T) {
		gt.Bool(t, types.TierArchive.CanTransitionTo(types.TierActive)).False()
		gt.Bool(t, types.TierExpired.CanTransitionTo(types.TierArchive)).False()
		gt.Bool(t, types.TierExpired.CanTransitionTo(types.TierActive)).False()
	})

	t.Run("self transition is rejected", func(t *testing.T) {
		for _, tier := range types.AllTiers() {
			gt.Bool(t, tier.CanTransitionTo(tier)).False()
		}
	})
}

func TestTierValidity(t *testing.T) {
	for _, tier := range types.AllTiers() {
		gt.Bool(t, tier.IsValid()).True()
	}
	gt.Bool(t, types.Tier("frozen").IsValid()).False()

	_, err := types.ParseTier("frozen")
	gt.Error(t, err)
}

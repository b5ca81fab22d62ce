package model_test

import (
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/mnemo-ai/mnemo/pkg/domain/model"
)

func TestContextPayloadBudget(t *testing.T) {
	t.Run("appends within budget", func(t *testing.T) {
		payload := model.NewContextPayload(20)
		gt.Bool(t, payload.Append(model.SegmentSourceSession, "hello")).True()
		gt.Bool(t, payload.Append(model.SegmentSourceSession, "world")).True()
		gt.Value(t, payload.Size()).Equal(10)
		gt.Array(t, payload.Segments()).Length(2)
	})

	t.Run("drops overflowing segment whole", func(t *testing.T) {
		payload := model.NewContextPayload(10)
		gt.Bool(t, payload.Append(model.SegmentSourceSession, "12345678")).True()
		gt.Bool(t, payload.Append(model.SegmentSourceSemantic, "too long")).False()

		// Nothing was truncated: the payload still holds only the first
		// segment, and later smaller segments can still fit.
		gt.Array(t, payload.Segments()).Length(1)
		gt.Value(t, payload.Size()).Equal(8)
		gt.Bool(t, payload.Append(model.SegmentSourceSemantic, "ab")).True()
	})

	t.Run("rejects empty segment", func(t *testing.T) {
		payload := model.NewContextPayload(10)
		gt.Bool(t, payload.Append(model.SegmentSourceProfile, "")).False()
		gt.Bool(t, payload.Empty()).True()
	})
}

func TestContextPayloadDegradation(t *testing.T) {
	payload := model.NewContextPayload(100)
	gt.Bool(t, payload.IsDegraded()).False()

	payload.MarkDegraded(model.SegmentSourceSemantic)
	payload.MarkDegraded(model.SegmentSourceSemantic)
	payload.MarkDegraded(model.SegmentSourceProfile)

	gt.Bool(t, payload.IsDegraded()).True()
	gt.Array(t, payload.Degraded()).Length(2)
}

func TestContextPayloadText(t *testing.T) {
	payload := model.NewContextPayload(100)
	payload.Append(model.SegmentSourceSession, "User: hi")
	payload.Append(model.SegmentSourceSession, "AI: hello")
	payload.Append(model.SegmentSourceProfile, "Profile: Mia")

	text := payload.Text()
	gt.Value(t, text).Equal("User: hi\nAI: hello\nProfile: Mia")
	gt.Value(t, len(strings.Split(text, "\n"))).Equal(3)
}

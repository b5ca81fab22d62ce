package errutil_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/mnemo-ai/mnemo/pkg/domain/types"
	"github.com/mnemo-ai/mnemo/pkg/utils/errutil"
)

func TestHandle(t *testing.T) {
	ctx := context.Background()

	gt.NoError(t, errutil.Handle(ctx, nil, "nothing happened"))

	err := goerr.Wrap(types.ErrStoreUnavailable, "append failed", goerr.V("user_id", "user-1"))
	gt.Value(t, errutil.Handle(ctx, err, "failed to append session turns")).Equal(err)
}

func TestStatusCode(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		expect int
	}{
		{"nil", nil, http.StatusOK},
		{"invalid input", goerr.Wrap(types.ErrInvalidInput, "empty message"), http.StatusBadRequest},
		{"not found", goerr.Wrap(types.ErrNotFound, "unknown user"), http.StatusNotFound},
		{"store unavailable", goerr.Wrap(types.ErrStoreUnavailable, "backend down"), http.StatusServiceUnavailable},
		{"unclassified", goerr.New("unexpected"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gt.Value(t, errutil.StatusCode(tc.err)).Equal(tc.expect)
		})
	}
}

func TestHandleHTTP(t *testing.T) {
	ctx := context.Background()

	rec := httptest.NewRecorder()
	errutil.HandleHTTP(ctx, rec, goerr.Wrap(types.ErrNotFound, "unknown user"))
	gt.Value(t, rec.Code).Equal(http.StatusNotFound)

	rec = httptest.NewRecorder()
	errutil.HandleHTTP(ctx, rec, nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)
}

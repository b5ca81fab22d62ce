package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	httpctrl "github.com/mnemo-ai/mnemo/pkg/controller/http"
	"github.com/mnemo-ai/mnemo/pkg/domain/model"
	indexmem "github.com/mnemo-ai/mnemo/pkg/index/memory"
	"github.com/mnemo-ai/mnemo/pkg/repository/memory"
	"github.com/mnemo-ai/mnemo/pkg/service/embedding"
	"github.com/mnemo-ai/mnemo/pkg/usecase"
)

func newTestServer(t *testing.T) *httpctrl.Server {
	t.Helper()

	repo := memory.New()
	session := memory.NewSessionStore(10, time.Hour)
	index := indexmem.New()

	uc, err := usecase.New(repo, session, index, embedding.NewMock())
	gt.NoError(t, err).Required()

	gt.NoError(t, uc.PutProfile(context.Background(), &model.UserProfile{
		UserID: "user-1",
		Name:   "Mia",
		Age:    82,
	})).Required()

	return httpctrl.New(uc)
}

func doJSON(t *testing.T, server *httpctrl.Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		gt.NoError(t, err).Required()
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer(t)

	rec := doJSON(t, server, http.MethodGet, "/health", nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)
}

func TestCreateInteractionEndpoint(t *testing.T) {
	server := newTestServer(t)

	t.Run("created", func(t *testing.T) {
		rec := doJSON(t, server, http.MethodPost, "/api/v1/interactions", map[string]string{
			"user_id":  "user-1",
			"message":  "my knee hurts today",
			"response": "I'm sorry, did you rest it?",
		})
		gt.Value(t, rec.Code).Equal(http.StatusCreated)

		var resp struct {
			FragmentID string `json:"fragment_id"`
		}
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp)).Required()
		gt.String(t, resp.FragmentID).NotEqual("")
	})

	t.Run("unknown user is 404", func(t *testing.T) {
		rec := doJSON(t, server, http.MethodPost, "/api/v1/interactions", map[string]string{
			"user_id":  "stranger",
			"message":  "hello",
			"response": "hi",
		})
		gt.Value(t, rec.Code).Equal(http.StatusNotFound)
	})

	t.Run("empty message is 400", func(t *testing.T) {
		rec := doJSON(t, server, http.MethodPost, "/api/v1/interactions", map[string]string{
			"user_id":  "user-1",
			"response": "hi",
		})
		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	})

	t.Run("malformed body is 400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/interactions", bytes.NewReader([]byte("{broken")))
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, req)
		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	})
}

func TestAssembleContextEndpoint(t *testing.T) {
	server := newTestServer(t)

	rec := doJSON(t, server, http.MethodPost, "/api/v1/interactions", map[string]string{
		"user_id":  "user-1",
		"message":  "good morning",
		"response": "good morning Mia",
	})
	gt.Value(t, rec.Code).Equal(http.StatusCreated)

	rec = doJSON(t, server, http.MethodPost, "/api/v1/context", map[string]string{
		"user_id": "user-1",
		"message": "how are you?",
	})
	gt.Value(t, rec.Code).Equal(http.StatusOK)

	var resp struct {
		Segments []struct {
			Source string `json:"source"`
			Text   string `json:"text"`
		} `json:"segments"`
		Text   string `json:"text"`
		Budget int    `json:"budget"`
	}
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp)).Required()
	gt.Bool(t, len(resp.Segments) >= 2).True()
	gt.Value(t, resp.Segments[0].Source).Equal("session")
	gt.Value(t, resp.Segments[0].Text).Equal("User: good morning")
	gt.String(t, resp.Text).NotEqual("")
	gt.Value(t, resp.Budget).Equal(4000)
}

func TestSearchMemoriesEndpoint(t *testing.T) {
	server := newTestServer(t)

	rec := doJSON(t, server, http.MethodPost, "/api/v1/interactions", map[string]string{
		"user_id":  "user-1",
		"message":  "my favorite soup is minestrone",
		"response": "noted!",
	})
	gt.Value(t, rec.Code).Equal(http.StatusCreated)

	t.Run("structured listing", func(t *testing.T) {
		rec := doJSON(t, server, http.MethodGet, "/api/v1/memories?user_id=user-1", nil)
		gt.Value(t, rec.Code).Equal(http.StatusOK)

		var resp struct {
			Memories []struct {
				Category string `json:"category"`
				Tier     string `json:"tier"`
			} `json:"memories"`
		}
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp)).Required()
		gt.Array(t, resp.Memories).Length(1)
		gt.Value(t, resp.Memories[0].Category).Equal("preference")
		gt.Value(t, resp.Memories[0].Tier).Equal("active")
	})

	t.Run("category filter excludes", func(t *testing.T) {
		rec := doJSON(t, server, http.MethodGet, "/api/v1/memories?user_id=user-1&categories=health", nil)
		gt.Value(t, rec.Code).Equal(http.StatusOK)

		var resp struct {
			Memories []json.RawMessage `json:"memories"`
		}
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp)).Required()
		gt.Array(t, resp.Memories).Length(0)
	})

	t.Run("invalid category is 400", func(t *testing.T) {
		rec := doJSON(t, server, http.MethodGet, "/api/v1/memories?user_id=user-1&categories=weather", nil)
		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	})

	t.Run("invalid limit is 400", func(t *testing.T) {
		rec := doJSON(t, server, http.MethodGet, "/api/v1/memories?user_id=user-1&limit=zero", nil)
		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	})
}

func TestProfileEndpoints(t *testing.T) {
	server := newTestServer(t)

	t.Run("put and get", func(t *testing.T) {
		rec := doJSON(t, server, http.MethodPut, "/api/v1/users/user-2/profile", map[string]any{
			"name":       "Ken",
			"age":        77,
			"conditions": []string{"arthritis"},
			"interests":  []string{"chess"},
		})
		gt.Value(t, rec.Code).Equal(http.StatusOK)

		rec = doJSON(t, server, http.MethodGet, "/api/v1/users/user-2/profile", nil)
		gt.Value(t, rec.Code).Equal(http.StatusOK)

		var resp struct {
			UserID string   `json:"user_id"`
			Name   string   `json:"name"`
			Age    int      `json:"age"`
			Cond   []string `json:"conditions"`
		}
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp)).Required()
		gt.Value(t, resp.UserID).Equal("user-2")
		gt.Value(t, resp.Name).Equal("Ken")
		gt.Value(t, resp.Age).Equal(77)
		gt.Array(t, resp.Cond).Length(1)
	})

	t.Run("missing profile is 404", func(t *testing.T) {
		rec := doJSON(t, server, http.MethodGet, "/api/v1/users/nobody/profile", nil)
		gt.Value(t, rec.Code).Equal(http.StatusNotFound)
	})

	t.Run("invalid profile is 400", func(t *testing.T) {
		rec := doJSON(t, server, http.MethodPut, "/api/v1/users/user-3/profile", map[string]any{
			"age": -1,
		})
		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	})
}

func TestSessionAndStatsEndpoints(t *testing.T) {
	server := newTestServer(t)

	rec := doJSON(t, server, http.MethodPost, "/api/v1/interactions", map[string]string{
		"user_id":  "user-1",
		"message":  "hello",
		"response": "hi",
	})
	gt.Value(t, rec.Code).Equal(http.StatusCreated)

	rec = doJSON(t, server, http.MethodDelete, "/api/v1/users/user-1/session", nil)
	gt.Value(t, rec.Code).Equal(http.StatusNoContent)

	rec = doJSON(t, server, http.MethodGet, "/api/v1/users/user-1/stats", nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)

	var resp struct {
		ActiveFragments   int   `json:"active_fragments"`
		TotalInteractions int64 `json:"total_interactions"`
	}
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp)).Required()
	gt.Value(t, resp.ActiveFragments).Equal(1)
	gt.Value(t, resp.TotalInteractions).Equal(int64(1))
}

func TestArchivalEndpoint(t *testing.T) {
	server := newTestServer(t)

	rec := doJSON(t, server, http.MethodPost, "/api/v1/archival", nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)

	var resp struct {
		Scanned  int    `json:"scanned"`
		Archived int    `json:"archived"`
		Duration string `json:"duration"`
	}
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp)).Required()
	gt.Value(t, resp.Archived).Equal(0)
	gt.String(t, resp.Duration).NotEqual("")
}

package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atvirokodosprendimai/feedbackapi/internal/config"
	"github.com/atvirokodosprendimai/feedbackapi/internal/core/domain"
)

func do(t *testing.T, h http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res := httptest.NewRecorder()
	h.ServeHTTP(res, req)
	return res
}

func ingestProjectName(t *testing.T, h http.Handler, apiKey, body string) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/feedback", strings.NewReader(body))
	req.Header.Set("X-API-Key", apiKey)
	res := httptest.NewRecorder()
	h.ServeHTTP(res, req)
	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())
	var out struct {
		Feedback struct {
			Project struct {
				Name string `json:"name"`
			} `json:"project"`
		} `json:"feedback"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &out))
	return out.Feedback.Project.Name
}

func TestServerEndToEnd(t *testing.T) {
	cfg, err := config.Load("", map[string]any{
		"db-path":           filepath.Join(t.TempDir(), "app.sqlite"),
		"dev-mode":          true,
		"ingest-rate-limit": "",
	})
	require.NoError(t, err)

	server, closer, err := NewServer(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = closer.Close() })
	h := server.Handler

	res := do(t, h, http.MethodPost, "/v1/feedback", `{"message":"too early"}`, "")
	require.Equal(t, http.StatusInternalServerError, res.Code, "no principal can own the default project yet")

	res = do(t, h, http.MethodPost, "/v1/auth/register", `{"email":"owner@example.com","password":"correct horse"}`, "")
	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())

	res = do(t, h, http.MethodPost, "/v1/feedback", `{"message":"hello","rating":4,"metadata":{"page":"/"}}`, "")
	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())
	var ingested struct {
		Feedback struct {
			Project struct {
				Name string `json:"name"`
			} `json:"project"`
		} `json:"feedback"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &ingested))
	assert.Equal(t, domain.DefaultProjectName, ingested.Feedback.Project.Name)

	res = do(t, h, http.MethodPost, "/v1/auth/login", `{"email":"owner@example.com","password":"correct horse"}`, "")
	require.Equal(t, http.StatusOK, res.Code)
	var session struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &session))
	require.NotEmpty(t, session.Token)

	res = do(t, h, http.MethodGet, "/v1/projects", "", session.Token)
	require.Equal(t, http.StatusOK, res.Code)
	var projects struct {
		Items []struct {
			APIKey        string `json:"api_key"`
			IsDefault     bool   `json:"is_default"`
			FeedbackCount int    `json:"feedback_count"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &projects))
	require.Len(t, projects.Items, 1)
	assert.True(t, projects.Items[0].IsDefault)
	assert.Equal(t, 1, projects.Items[0].FeedbackCount)

	req := httptest.NewRequest(http.MethodPost, "/v1/feedback", strings.NewReader(`{"message":"keyed","rating":2}`))
	req.Header.Set("X-API-Key", projects.Items[0].APIKey)
	keyed := httptest.NewRecorder()
	h.ServeHTTP(keyed, req)
	require.Equal(t, http.StatusCreated, keyed.Code)

	res = do(t, h, http.MethodGet, "/v1/insights", "", session.Token)
	require.Equal(t, http.StatusOK, res.Code)
	var report struct {
		TotalFeedback int     `json:"total_feedback"`
		AverageRating float64 `json:"average_rating"`
		TotalProjects int     `json:"total_projects"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &report))
	assert.Equal(t, 2, report.TotalFeedback)
	assert.Equal(t, 3.0, report.AverageRating)
	assert.Equal(t, 1, report.TotalProjects)

	res = do(t, h, http.MethodPost, "/v1/projects", `{"name":"Shop","domain":"shop.example.com"}`, session.Token)
	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())
	var shop struct {
		ID     string `json:"id"`
		APIKey string `json:"api_key"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &shop))

	req = httptest.NewRequest(http.MethodPost, "/v1/feedback", strings.NewReader(`{"message":"from shop","rating":1}`))
	req.Header.Set("X-API-Key", shop.APIKey)
	keyed = httptest.NewRecorder()
	h.ServeHTTP(keyed, req)
	require.Equal(t, http.StatusCreated, keyed.Code)

	res = do(t, h, http.MethodDelete, "/v1/projects/"+shop.ID, "", session.Token)
	require.Equal(t, http.StatusNoContent, res.Code)

	res = do(t, h, http.MethodGet, "/v1/insights", "", session.Token)
	require.Equal(t, http.StatusOK, res.Code)
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &report))
	assert.Equal(t, 2, report.TotalFeedback, "deleted project's feedback leaves the report")

	res = do(t, h, http.MethodGet, "/v1/insights?include_orphaned=true", "", session.Token)
	require.Equal(t, http.StatusOK, res.Code)
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &report))
	assert.Equal(t, 3, report.TotalFeedback)

	res = do(t, h, http.MethodPost, "/v1/projects", `{"name":"Blog","domain":"https://blog.example.com"}`, session.Token)
	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())
	var blog struct {
		ID     string `json:"id"`
		APIKey string `json:"api_key"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &blog))
	oldKey := blog.APIKey
	assert.Equal(t, "Blog", ingestProjectName(t, h, oldKey, `{"message":"before rotation"}`))

	res = do(t, h, http.MethodPatch, "/v1/projects/"+blog.ID, `{"regenerate_api_key":true}`, session.Token)
	require.Equal(t, http.StatusOK, res.Code, res.Body.String())
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &blog))
	require.NotEqual(t, oldKey, blog.APIKey)

	assert.Equal(t, domain.DefaultProjectName, ingestProjectName(t, h, oldKey, `{"message":"stale key"}`),
		"a rotated-out key falls back to the default project")
	assert.Equal(t, "Blog", ingestProjectName(t, h, blog.APIKey, `{"message":"fresh key"}`))

	res = do(t, h, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, res.Code)
}

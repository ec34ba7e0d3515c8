//go:build integration_test || all_tests

package test

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *IntegrationTestSuite) TestPosts() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cookie := doLogin(ctx, t)

	resp := doRequest(ctx, t, http.MethodPost, "/api/admin/posts", `{"title":"Integration post","body":"integration body text"}`, nil)
	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)

	resp = doRequest(ctx, t, http.MethodPost, "/api/admin/posts", `{"title":"Integration post","body":"integration body text","tags":["it"]}`, cookie)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(resp.Body))
	var created struct {
		ID   string `json:"id"`
		Slug string `json:"slug"`
	}
	require.NoError(t, json.Unmarshal(resp.Body, &created))
	assert.Equal(t, "integration-post", created.Slug)

	resp = doRequest(ctx, t, http.MethodPost, "/api/admin/posts", `{"title":"Integration  Post","body":"another body text"}`, cookie)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "Slug already exists. Choose another.", resp.message(t))

	resp = doRequest(ctx, t, http.MethodGet, "/api/posts/integration-post", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// unpublishing clears the cached slug lookup
	resp = doRequest(ctx, t, http.MethodPatch, "/api/admin/posts/"+created.ID, `{"published":false}`, cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(resp.Body))
	resp = doRequest(ctx, t, http.MethodGet, "/api/posts/integration-post", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doRequest(ctx, t, http.MethodDelete, "/api/admin/posts/"+created.ID, "", cookie)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp = doRequest(ctx, t, http.MethodDelete, "/api/admin/posts/"+created.ID, "", cookie)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func (s *IntegrationTestSuite) TestNews() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cookie := doLogin(ctx, t)

	resp := doRequest(ctx, t, http.MethodPost, "/api/admin/news",
		`{"title":"Integration news","body":"integration news body","publishedAt":"2025-05-01T08:00:00Z"}`, cookie)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(resp.Body))

	resp = doRequest(ctx, t, http.MethodGet, "/api/news/integration-news", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var item struct {
		PublishedAt string `json:"publishedAt"`
	}
	require.NoError(t, json.Unmarshal(resp.Body, &item))
	assert.True(t, strings.HasPrefix(item.PublishedAt, "2025-05-01T08:00:00"), item.PublishedAt)
}

func (s *IntegrationTestSuite) TestCollaborations() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	resp := doRequest(ctx, t, http.MethodPost, "/api/collaborations", `{
		"type": "RESEARCH",
		"title": "Soil <b>sensors</b>",
		"fullName": "Ada Lovelace",
		"description": "Looking for a partner to co-design low power soil sensors."
	}`, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(resp.Body))
	var created struct {
		ID     string `json:"id"`
		Title  string `json:"title"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(resp.Body, &created))
	assert.Equal(t, "Soil sensors", created.Title)
	assert.Equal(t, "PENDING", created.Status)

	var list struct {
		Total int `json:"total"`
	}
	resp = doRequest(ctx, t, http.MethodGet, "/api/collaborations?q=soil", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(resp.Body, &list))
	assert.Equal(t, 0, list.Total)

	cookie := doLogin(ctx, t)
	resp = doRequest(ctx, t, http.MethodPatch, "/api/admin/collaborations/"+created.ID, `{"status":"APPROVED"}`, cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(resp.Body))

	resp = doRequest(ctx, t, http.MethodGet, "/api/collaborations?q=soil", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(resp.Body, &list))
	assert.Equal(t, 1, list.Total)
}

func (s *IntegrationTestSuite) TestSubscribers() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	resp := doRequest(ctx, t, http.MethodPost, "/api/subscribers", `{"email":"it@example.com"}`, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Subscribed", resp.message(t))

	resp = doRequest(ctx, t, http.MethodPost, "/api/subscribers", `{"email":"it@example.com"}`, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "You're already subscribed.", resp.message(t))

	resp = doRequest(ctx, t, http.MethodGet, "/api/admin/subscribers/export", "", doLogin(ctx, t))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	lines := strings.Split(strings.TrimSpace(string(resp.Body)), "\n")
	require.GreaterOrEqual(t, len(lines), 2)
	assert.Equal(t, "email,created_at", lines[0])
	assert.Contains(t, string(resp.Body), "it@example.com,")
}

package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"tokenhub/internal/model"

	"github.com/stretchr/testify/assert"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server, New(server.URL, "sk-test")
}

func TestGetToken(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/token/7", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data":    model.Token{ID: 7, Name: "alpha", ExpiredTime: model.ExpiryNever},
		})
	})

	token, err := c.GetToken(context.Background(), 7)
	assert.NoError(t, err)
	assert.Equal(t, 7, token.ID)
	assert.Equal(t, "alpha", token.Name)
	assert.Equal(t, model.ExpiryNever, token.ExpiredTime)
}

// Domain failures arrive as HTTP 200 with success=false; the backend's
// message is surfaced verbatim.
func TestEnvelopeFailure(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"message": "token name is too long",
		})
	})

	err := c.CreateToken(context.Background(), &model.Token{Name: "x"})
	assert.EqualError(t, err, "token name is too long")
}

func TestNonSuccessStatus(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": "unauthorized"})
	})

	_, err := c.GetToken(context.Background(), 1)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status")
}

func TestCreateTokenSendsPayload(t *testing.T) {
	var received model.Token
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/token/", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
	})

	payload := &model.Token{Name: "batch-1", RemainQuota: 500000, StartOnFirstUse: true, DurationSeconds: 3600}
	assert.NoError(t, c.CreateToken(context.Background(), payload))
	assert.Equal(t, "batch-1", received.Name)
	assert.Equal(t, 500000, received.RemainQuota)
	assert.True(t, received.StartOnFirstUse)
	assert.Equal(t, int64(3600), received.DurationSeconds)
}

func TestUpdateToken(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
	})
	assert.NoError(t, c.UpdateToken(context.Background(), &model.Token{ID: 3}))
}

func TestListModels(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/user/models", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data":    []string{"gpt-4", "claude-3"},
		})
	})

	models, err := c.ListModels(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, []string{"gpt-4", "claude-3"}, models)
}

func TestListGroups(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/user/self/groups", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data": map[string]GroupInfo{
				"default": {Desc: "Default", Ratio: 1},
				"vip":     {Desc: "VIP", Ratio: 0.8},
			},
		})
	})

	groups, err := c.ListGroups(context.Background())
	assert.NoError(t, err)
	assert.Len(t, groups, 2)
	assert.Equal(t, "VIP", groups["vip"].Desc)
}

func TestContextCancellation(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.GetToken(ctx, 1)
	assert.Error(t, err)
}

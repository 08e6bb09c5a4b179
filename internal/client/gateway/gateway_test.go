package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/widiatmoko/jurnalku/internal/domain/user"
)

func TestLogin(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/login", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req user.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "ADMIN", req.Role)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":    "u-admin",
			"name":  "Administrator",
			"role":  "ADMIN",
			"token": "session-token",
		})
	}))
	defer ts.Close()

	g := New(ts.URL, nil)
	u, token, err := g.Login(context.Background(), "ADMIN", "admin", "admin123")

	require.NoError(t, err)
	assert.Equal(t, "u-admin", u.ID)
	assert.Equal(t, "session-token", token)
}

func TestDo_RemoteErrorCarriesServerMessage(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":"bad_request","message":"Bad request: Missing user ID."}}`))
	}))
	defer ts.Close()

	g := New(ts.URL, nil)
	err := g.DeleteUser(context.Background(), "")

	var re *RemoteError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, http.StatusBadRequest, re.Status)
	assert.Equal(t, "Bad request: Missing user ID.", re.Message)
	assert.Equal(t, "Bad request: Missing user ID.", err.Error())
}

func TestDo_NetworkError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close() // connection refused from now on

	g := New(ts.URL, nil)
	_, err := g.ListUsers(context.Background())

	var ne *NetworkError
	require.ErrorAs(t, err, &ne)
	assert.Equal(t, "GET /api/users", ne.Op)
}

func TestDo_GetRequestsDefeatCaches(t *testing.T) {
	var gotQuery string
	var gotHeader string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("_")
		gotHeader = r.Header.Get("Cache-Control")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer ts.Close()

	g := New(ts.URL, nil)
	_, err := g.ListJournals(context.Background())

	require.NoError(t, err)
	assert.NotEmpty(t, gotQuery, "cache-buster query param missing")
	assert.Equal(t, "no-cache", gotHeader)
}

func TestDo_BearerTokenAttachedWhenSet(t *testing.T) {
	var gotAuth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer ts.Close()

	g := New(ts.URL, nil)

	_, err := g.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Empty(t, gotAuth)

	g.SetToken("abc123")
	_, err = g.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc123", gotAuth)
}

func TestDo_InvalidBodyIsRemoteError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer ts.Close()

	g := New(ts.URL, nil)
	_, err := g.ListUsers(context.Background())

	var re *RemoteError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "invalid_response", re.Code)
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(&RemoteError{Status: http.StatusNotFound}))
	assert.False(t, IsNotFound(&RemoteError{Status: http.StatusBadRequest}))
	assert.False(t, IsNotFound(errors.New("plain")))
}

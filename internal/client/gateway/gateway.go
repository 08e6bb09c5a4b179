// Package gateway is the HTTP client for the jurnalku API. It translates
// the remote CRUD operations into typed results and never retries; retry
// policy belongs to the caller.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/widiatmoko/jurnalku/internal/domain/journal"
	"github.com/widiatmoko/jurnalku/internal/domain/user"
)

type Gateway struct {
	base string
	http *http.Client

	mu    sync.RWMutex
	token string
}

func New(baseURL string, client *http.Client) *Gateway {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Gateway{base: baseURL, http: client}
}

// SetToken installs (or with "" clears) the session token attached as a
// Bearer header on subsequent calls.
func (g *Gateway) SetToken(token string) {
	g.mu.Lock()
	g.token = token
	g.mu.Unlock()
}

type loginResponse struct {
	user.User
	Token string `json:"token"`
}

func (g *Gateway) Login(ctx context.Context, role, identifier, password string) (user.User, string, error) {
	body := user.LoginRequest{Role: role, Identifier: identifier, Password: password}

	var resp loginResponse
	if err := g.do(ctx, http.MethodPost, "/api/login", nil, body, &resp); err != nil {
		return user.User{}, "", err
	}
	return resp.User, resp.Token, nil
}

func (g *Gateway) ListUsers(ctx context.Context) ([]user.User, error) {
	var out []user.User
	if err := g.do(ctx, http.MethodGet, "/api/users", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (g *Gateway) CreateUser(ctx context.Context, req user.CreateUserRequest) (user.User, error) {
	var out user.User
	if err := g.do(ctx, http.MethodPost, "/api/users", nil, req, &out); err != nil {
		return user.User{}, err
	}
	return out, nil
}

func (g *Gateway) UpdateUser(ctx context.Context, req user.UpdateUserRequest) (user.User, error) {
	var out user.User
	if err := g.do(ctx, http.MethodPut, "/api/users", nil, req, &out); err != nil {
		return user.User{}, err
	}
	return out, nil
}

func (g *Gateway) DeleteUser(ctx context.Context, id string) error {
	q := url.Values{"id": {id}}
	return g.do(ctx, http.MethodDelete, "/api/users", q, nil, nil)
}

func (g *Gateway) ResetAllData(ctx context.Context) error {
	q := url.Values{"action": {"reset_application_data"}}
	return g.do(ctx, http.MethodDelete, "/api/users", q, nil, nil)
}

func (g *Gateway) ListJournals(ctx context.Context) ([]journal.Entry, error) {
	var out []journal.Entry
	if err := g.do(ctx, http.MethodGet, "/api/journals", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (g *Gateway) CreateEntry(ctx context.Context, req journal.CreateEntryRequest) (journal.Entry, error) {
	var out journal.Entry
	if err := g.do(ctx, http.MethodPost, "/api/journals", nil, req, &out); err != nil {
		return journal.Entry{}, err
	}
	return out, nil
}

func (g *Gateway) UpdateEntry(ctx context.Context, req journal.UpdateEntryRequest) (journal.Entry, error) {
	var out journal.Entry
	if err := g.do(ctx, http.MethodPut, "/api/journals", nil, req, &out); err != nil {
		return journal.Entry{}, err
	}
	return out, nil
}

func (g *Gateway) DeleteEntry(ctx context.Context, id string) error {
	q := url.Values{"id": {id}}
	return g.do(ctx, http.MethodDelete, "/api/journals", q, nil, nil)
}

// errorEnvelope matches the server's error body shape.
type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (g *Gateway) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	op := method + " " + path

	u, err := url.Parse(g.base + path)
	if err != nil {
		return err
	}

	q := u.Query()
	for k, vs := range query {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	if method == http.MethodGet {
		// Cache busting on every read. Proxies between the client and the
		// server may ignore response directives; a per-call unique query
		// string defeats them regardless.
		q.Set("_", strconv.FormatInt(time.Now().UnixNano(), 10))
	}
	u.RawQuery = q.Encode()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method == http.MethodGet {
		req.Header.Set("Cache-Control", "no-cache")
	}

	g.mu.RLock()
	token := g.token
	g.mu.RUnlock()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := g.http.Do(req)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		re := &RemoteError{Status: resp.StatusCode}

		var envelope errorEnvelope
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil {
			re.Code = envelope.Error.Code
			re.Message = envelope.Error.Message
		}
		return re
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &RemoteError{Status: resp.StatusCode, Code: "invalid_response", Message: "invalid response body"}
	}
	return nil
}

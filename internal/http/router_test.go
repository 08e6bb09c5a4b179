package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/widiatmoko/jurnalku/internal/auth"
	apihttp "github.com/widiatmoko/jurnalku/internal/http"
	"github.com/widiatmoko/jurnalku/internal/observability"
	"github.com/widiatmoko/jurnalku/internal/repo/memory"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()

	return apihttp.NewRouter(observability.NewLogger("test"), apihttp.Deps{
		Users:    memory.NewUsersRepo(),
		Journals: memory.NewJournalsRepo(),
		JWT:      auth.NewManager("test-secret", time.Hour),
	})
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	r := newTestRouter(t)

	// PATCH is not part of the contract for any collection path
	req := httptest.NewRequest(http.MethodPatch, "/api/users", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("got status %d, want 405, body=%s", w.Code, w.Body.String())
	}
}

func TestRouter_UnknownRoute(t *testing.T) {
	r := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/teachers", nil))

	if w.Code != http.StatusNotFound {
		t.Fatalf("got status %d, want 404", w.Code)
	}
}

func TestRouter_NoStoreOnEveryResponse(t *testing.T) {
	r := newTestRouter(t)

	paths := []string{"/api/users", "/api/journals", "/healthz"}
	for _, path := range paths {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

		cc := w.Header().Get("Cache-Control")
		if cc == "" || !contains(cc, "no-store") {
			t.Fatalf("%s: Cache-Control %q lacks no-store", path, cc)
		}
	}
}

func TestRouter_RequiresJSONBodyContentType(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/login", bytes.NewBufferString(`{}`))
	// deliberately no Content-Type
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("got status %d, want 415, body=%s", w.Code, w.Body.String())
	}
}

// Full pass through the memory-backed stack: first list seeds the roster,
// then the seeded admin can log in.
func TestRouter_SeededLoginFlow(t *testing.T) {
	r := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/users", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("list: got status %d, body=%s", w.Code, w.Body.String())
	}

	var roster []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &roster); err != nil {
		t.Fatalf("unmarshal roster: %v", err)
	}
	if len(roster) == 0 {
		t.Fatalf("empty roster after first list")
	}

	login := `{"role":"ADMIN","identifier":"admin","password":"admin123"}`
	req := httptest.NewRequest(http.MethodPost, "/api/login", bytes.NewBufferString(login))
	req.Header.Set("Content-Type", "application/json")
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, req)

	if w2.Code != http.StatusOK {
		t.Fatalf("login: got status %d, body=%s", w2.Code, w2.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(w2.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal login: %v", err)
	}
	if resp["token"] == "" || resp["token"] == nil {
		t.Fatalf("no token in login response: %v", resp)
	}
}

func contains(s, sub string) bool {
	return bytes.Contains([]byte(s), []byte(sub))
}

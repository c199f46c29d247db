package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cloudnotes/cloudnotes/internal/identity"
	"github.com/cloudnotes/cloudnotes/internal/logger"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
}

func TestAllowOnlyCIDRS(t *testing.T) {
	log := logger.New("error", false)
	h := AllowOnlyCIDRS([]string{"10.0.0.0/8", "192.168.1.5"}, false, log)(okHandler())

	tests := []struct {
		remote string
		want   int
	}{
		{"10.1.2.3:1234", http.StatusOK},
		{"192.168.1.5:80", http.StatusOK},
		{"192.168.1.6:80", http.StatusForbidden},
		{"8.8.8.8:53", http.StatusForbidden},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		req.RemoteAddr = tt.remote
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != tt.want {
			t.Errorf("remote %s: status = %d, want %d", tt.remote, rec.Code, tt.want)
		}
	}
}

func TestAllowOnlyCIDRSEmptyIsPassthrough(t *testing.T) {
	h := AllowOnlyCIDRS(nil, false, logger.New("error", false))(okHandler())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestEnforceHost(t *testing.T) {
	h := EnforceHost([]string{"notes.example.com", "*.internal.lan"}, logger.New("error", false))(okHandler())

	tests := []struct {
		host string
		want int
	}{
		{"notes.example.com", http.StatusOK},
		{"notes.example.com:5000", http.StatusOK},
		{"api.internal.lan", http.StatusOK},
		{"evil.com", http.StatusForbidden},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Host = tt.host
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != tt.want {
			t.Errorf("host %s: status = %d, want %d", tt.host, rec.Code, tt.want)
		}
	}
}

func TestAuthenticate(t *testing.T) {
	v := identity.NewVerifier("secret", "")
	tok, err := identity.NewIssuer("secret", "", time.Hour).Issue("alice")
	if err != nil {
		t.Fatal(err)
	}

	var seen string
	h := Authenticate(v, logger.New("error", false))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = identity.OwnerFrom(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/notes", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || seen != "alice" {
		t.Errorf("status = %d owner = %q, want 200 alice", rec.Code, seen)
	}

	seen = ""
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/notes", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if seen != "" {
		t.Error("handler ran without a token")
	}
}

func TestRateLimit(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l := newLimiter(RateLimitConfig{Burst: 2, PerMinute: 60}, func() time.Time { return now })
	h := rateLimit(l)(okHandler())

	do := func(remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/notes", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	if rec := do("1.1.1.1:1"); rec.Code != http.StatusOK || rec.Header().Get("X-RateLimit-Remaining") != "1" {
		t.Fatalf("first request: %d remaining=%s", rec.Code, rec.Header().Get("X-RateLimit-Remaining"))
	}
	do("1.1.1.1:1")
	rec := do("1.1.1.1:1")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("third request: status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "1" {
		t.Errorf("Retry-After = %q, want 1", rec.Header().Get("Retry-After"))
	}

	if rec := do("2.2.2.2:1"); rec.Code != http.StatusOK {
		t.Errorf("other client: status = %d, want 200", rec.Code)
	}

	now = now.Add(time.Second)
	if rec := do("1.1.1.1:1"); rec.Code != http.StatusOK {
		t.Errorf("after refill: status = %d, want 200", rec.Code)
	}
}

func TestRateLimitSweepsIdleClients(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l := newLimiter(RateLimitConfig{Burst: 1, PerMinute: 1, IdleTTL: time.Minute, SweepInterval: time.Minute}, func() time.Time { return now })

	l.take("a")
	l.take("b")
	now = now.Add(2 * time.Minute)
	l.take("c")

	if got := l.size(); got != 1 {
		t.Errorf("tracked clients = %d, want 1", got)
	}
}

func TestCORS(t *testing.T) {
	h := CORS("http://localhost:5173")(okHandler())

	req := httptest.NewRequest(http.MethodOptions, "/api/notes", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "PATCH")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("Allow-Origin = %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("Allow-Credentials = %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/notes", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Allow-Origin for foreign origin = %q, want empty", got)
	}
}

package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddlewareLabelsByRoutePattern(t *testing.T) {
	m := NewMetrics("test")
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/notes/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"a", "b"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/notes/"+id, nil))
	}

	got := testutil.ToFloat64(m.RequestCounter.WithLabelValues(http.MethodGet, "/api/notes/{id}", "404"))
	if got != 2 {
		t.Errorf("requests_total = %v, want 2", got)
	}
	if v := testutil.ToFloat64(m.RequestsInFlight); v != 0 {
		t.Errorf("requests_in_flight = %v, want 0", v)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := NewMetrics("1.2.3")
	m.QuotaRejections.Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := rec.Body.String()
	for _, want := range []string{
		`cloudnotes_build_info{version="1.2.3"} 1`,
		"cloudnotes_notes_quota_rejections_total 1",
		"go_goroutines",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

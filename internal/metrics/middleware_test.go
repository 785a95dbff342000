package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// apiRouter mirrors the route layout the HTTP server mounts.
func apiRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	r.Route("/v1", func(r chi.Router) {
		r.Post("/triage", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"id":"r-1"}`))
		})
		r.Get("/categories", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	})
	return r
}

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	h := apiRouter()

	tests := []struct {
		method string
		target string
		route  string
		status string
	}{
		{http.MethodPost, "/v1/triage?evidence_limit=3", "/v1/triage", "200"},
		{http.MethodGet, "/v1/categories", "/v1/categories", "200"},
		{http.MethodGet, "/health", "/health", "503"},
		{http.MethodGet, "/nope", RouteUnmatched, "404"},
	}

	for _, tc := range tests {
		t.Run(tc.target, func(t *testing.T) {
			counter := HTTPRequestsTotal.WithLabelValues(tc.method, tc.route, tc.status)
			before := testutil.ToFloat64(counter)

			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(tc.method, tc.target, strings.NewReader("{}")))

			if got := testutil.ToFloat64(counter) - before; got != 1 {
				t.Errorf("expected one request on %s %s [%s], got %v", tc.method, tc.route, tc.status, got)
			}
		})
	}
}

func TestMiddleware_ObservesDurationAndSettlesInFlight(t *testing.T) {
	h := apiRouter()

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/categories", http.NoBody))

	if testutil.CollectAndCount(HTTPRequestDuration, "medtriage_http_request_duration_seconds") == 0 {
		t.Error("expected duration observations")
	}
	if got := testutil.ToFloat64(HTTPRequestsInFlight); got != 0 {
		t.Errorf("expected no requests in flight after completion, got %v", got)
	}
}

func TestRouteLabel_WithoutRouter(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/v1/triage", http.NoBody)
	if got := routeLabel(r); got != RouteUnmatched {
		t.Errorf("expected %q outside a chi router, got %q", RouteUnmatched, got)
	}
}

func TestRegisterHTTPMetrics_Idempotent(t *testing.T) {
	RegisterHTTPMetrics()
	RegisterHTTPMetrics()

	if err := prometheus.Register(HTTPRequestsTotal); err == nil {
		t.Error("expected AlreadyRegistered error on manual register")
	}
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AdamBeresnev/prompt-tournament/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func request(h http.Handler, remote string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/prompts", nil)
	req.RemoteAddr = remote
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateLimit(t *testing.T) {
	m := metrics.New()
	h := RateLimit(NewIPRateLimiter(0.001, 2), m)(okHandler)

	assert.Equal(t, http.StatusOK, request(h, "10.0.0.1:1234").Code)
	assert.Equal(t, http.StatusOK, request(h, "10.0.0.1:5678").Code)

	limited := request(h, "10.0.0.1:1234")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.JSONEq(t, `{"error":"Too many requests"}`, limited.Body.String())

	// other clients have their own bucket
	assert.Equal(t, http.StatusOK, request(h, "10.0.0.2:1234").Code)

	families, err := m.Gatherer().Gather()
	require.NoError(t, err)
	var found bool
	for _, f := range families {
		if f.GetName() == "prompt_tournament_rate_limited_requests_total" {
			found = true
			assert.Equal(t, 1.0, f.GetMetric()[0].GetCounter().GetValue())
		}
	}
	assert.True(t, found)
}

func TestRateLimit_Disabled(t *testing.T) {
	h := RateLimit(nil, nil)(okHandler)
	for i := 0; i < 50; i++ {
		require.Equal(t, http.StatusOK, request(h, "10.0.0.1:1").Code)
	}
}

func TestIPRateLimiter_ReusesLimiter(t *testing.T) {
	l := NewIPRateLimiter(1, 1)
	assert.Same(t, l.GetLimiter("a"), l.GetLimiter("a"))
	assert.NotSame(t, l.GetLimiter("a"), l.GetLimiter("b"))
}

func TestCORS(t *testing.T) {
	h := CORS([]string{"http://localhost:5173"})(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/api/prompts", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/prompts", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_NoOrigins(t *testing.T) {
	h := CORS(nil)(okHandler)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/AdamBeresnev/prompt-tournament/internal/httputil"
	"github.com/AdamBeresnev/prompt-tournament/internal/metrics"
	"golang.org/x/time/rate"
)

const (
	// cleanupThreshold is the minimum map size before idle entries are pruned.
	cleanupThreshold = 500
	maxIdleAge       = 10 * time.Minute
)

type ipEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter hands out one token bucket per client IP.
type IPRateLimiter struct {
	mu  sync.Mutex
	ips map[string]*ipEntry
	r   rate.Limit
	b   int
}

func NewIPRateLimiter(rps float64, burst int) *IPRateLimiter {
	return &IPRateLimiter{
		ips: make(map[string]*ipEntry),
		r:   rate.Limit(rps),
		b:   burst,
	}
}

func (l *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if len(l.ips) >= cleanupThreshold {
		for key, e := range l.ips {
			if now.Sub(e.lastSeen) > maxIdleAge {
				delete(l.ips, key)
			}
		}
	}

	e, ok := l.ips[ip]
	if !ok {
		e = &ipEntry{limiter: rate.NewLimiter(l.r, l.b)}
		l.ips[ip] = e
	}
	e.lastSeen = now
	return e.limiter
}

// RateLimit rejects requests over the per-IP budget with 429. A nil limiter disables limiting.
func RateLimit(limiter *IPRateLimiter, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}

			if !limiter.GetLimiter(ip).Allow() {
				m.RateLimited()
				httputil.TooManyRequests(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

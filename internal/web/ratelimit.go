package web

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"
)

const (
	maxTrackedClients = 10000
	clientIdleTTL     = 10 * time.Minute
)

// rateLimiter keeps one token bucket per client IP. Idle clients are
// forgotten after clientIdleTTL.
type rateLimiter struct {
	mu      sync.Mutex
	rps     rate.Limit
	burst   int
	clients *expirable.LRU[string, *rate.Limiter]
}

// newRateLimiter returns a disabled limiter when rps is zero.
func newRateLimiter(rps float64, burst int) *rateLimiter {
	if rps <= 0 {
		return &rateLimiter{}
	}
	if burst < 1 {
		burst = 1
	}
	return &rateLimiter{
		rps:     rate.Limit(rps),
		burst:   burst,
		clients: expirable.NewLRU[string, *rate.Limiter](maxTrackedClients, nil, clientIdleTTL),
	}
}

func (rl *rateLimiter) limiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if l, ok := rl.clients.Get(ip); ok {
		return l
	}
	l := rate.NewLimiter(rl.rps, rl.burst)
	rl.clients.Add(ip, l)
	return l
}

// Limit rejects requests beyond the client's rate with 429.
func (rl *rateLimiter) Limit(next http.Handler) http.Handler {
	if rl.clients == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.limiter(clientIP(r)).Allow() {
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP strips the port from RemoteAddr, which middleware.RealIP has
// already replaced with the forwarded address when one is present.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

package httpx

import (
	"net"
	"net/http"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

func LogRequests(log *logrus.Entry) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log.WithFields(logrus.Fields{
				"method":     r.Method,
				"url":        r.URL.String(),
				"remoteAddr": r.RemoteAddr,
				"userAgent":  r.UserAgent(),
			}).Info("got a new request")
			h.ServeHTTP(w, r)
		})
	}
}

const (
	DefaultRateLimitIdle = 10 * time.Minute
	maxRateLimitClients  = 10000
)

// RateLimiter keeps one token bucket per remote address. Buckets idle for
// longer than the idle window are dropped, and at most maxRateLimitClients
// are tracked at once.
type RateLimiter struct {
	clients *expirable.LRU[string, *rate.Limiter]
	rate    rate.Limit
	burst   int
}

func NewRateLimiter(requestsPerSecond, burst int, idle time.Duration) *RateLimiter {
	if idle <= 0 {
		idle = DefaultRateLimitIdle
	}
	return &RateLimiter{
		clients: expirable.NewLRU[string, *rate.Limiter](maxRateLimitClients, nil, idle),
		rate:    rate.Limit(requestsPerSecond),
		burst:   burst,
	}
}

// limiter returns the bucket for key and pushes its expiry out by the idle
// window.
func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	l, ok := rl.clients.Get(key)
	if !ok {
		l = rate.NewLimiter(rl.rate, rl.burst)
	}
	rl.clients.Add(key, l)
	return l
}

// Clients is the number of buckets currently tracked.
func (rl *RateLimiter) Clients() int {
	return len(rl.clients.Keys())
}

func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.limiter(clientKey(r)).Allow() {
			WriteJSON(w, http.StatusTooManyRequests, ErrorBody{Code: "RATE_LIMITED", Message: "too many requests"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

package httpx

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errMissing = errors.New("missing")

func classifyMissing(err error) (int, string, bool) {
	if errors.Is(err, errMissing) {
		return http.StatusNotFound, "NOT_FOUND", true
	}
	return 0, "", false
}

func TestStatusFromError(t *testing.T) {
	t.Run("classified -> 404", func(t *testing.T) {
		status, code, msg := StatusFromError(errors.Wrap(errMissing, "product p1"), classifyMissing)
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, "NOT_FOUND", code)
		assert.Equal(t, "product p1: missing", msg)
	})

	t.Run("unavailable -> 503", func(t *testing.T) {
		status, code, _ := StatusFromError(errors.Wrap(ErrUnavailable, "documents"), classifyMissing)
		assert.Equal(t, http.StatusServiceUnavailable, status)
		assert.Equal(t, "UNAVAILABLE", code)
	})

	t.Run("deadline -> 503", func(t *testing.T) {
		status, code, _ := StatusFromError(errors.Wrap(context.DeadlineExceeded, "list products"))
		assert.Equal(t, http.StatusServiceUnavailable, status)
		assert.Equal(t, "UNAVAILABLE", code)
	})

	t.Run("unknown -> 500 without leaking", func(t *testing.T) {
		status, code, msg := StatusFromError(errors.New("boom"), classifyMissing)
		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Equal(t, "INTERNAL", code)
		assert.Equal(t, "internal error", msg)
	})
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 2, time.Minute)
	h := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)

	other := httptest.NewRequest(http.MethodGet, "/", nil)
	other.RemoteAddr = "10.0.0.2:5555"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, other)
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRateLimiterDropsIdleClients(t *testing.T) {
	rl := NewRateLimiter(1, 1, 200*time.Millisecond)
	h := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	hit := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := 0; i < 20; i++ {
		hit(fmt.Sprintf("10.0.1.%d:4000", i))
	}
	assert.Equal(t, 20, rl.Clients())
	assert.Equal(t, http.StatusTooManyRequests, hit("10.0.1.0:4000"))

	require.Eventually(t, func() bool { return rl.Clients() == 0 }, 3*time.Second, 10*time.Millisecond)
}

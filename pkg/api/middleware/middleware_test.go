package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_Allow(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	l := NewRateLimiter(10)
	l.now = func() time.Time { return now }

	for i := 0; i < 10; i++ {
		assert.True(t, l.Allow("a"), "request %d", i)
	}
	assert.False(t, l.Allow("a"))
	assert.True(t, l.Allow("b"))

	now = now.Add(7 * time.Second)
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))

	now = now.Add(time.Minute)
	for i := 0; i < 10; i++ {
		assert.True(t, l.Allow("a"))
	}
}

func TestRateLimiter_evictsIdle(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	l := NewRateLimiter(1)
	l.now = func() time.Time { return now }

	l.Allow("a")
	now = now.Add(limiterIdleTTL + 2*time.Minute)
	l.Allow("b")

	_, ok := l.limiters["a"]
	assert.False(t, ok)
	assert.Len(t, l.limiters, 1)
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		forwarded  string
		want       string
	}{
		{name: "socket", remoteAddr: "192.0.2.1:1234", want: "192.0.2.1"},
		{name: "forwarded", remoteAddr: "10.0.0.1:1234", forwarded: "203.0.113.7, 10.0.0.1", want: "203.0.113.7"},
		{name: "no port", remoteAddr: "192.0.2.9", want: "192.0.2.9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			assert.Equal(t, tt.want, ClientIP(req))
		})
	}
}

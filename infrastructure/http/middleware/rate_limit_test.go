package middleware

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fixora/tasklist/infrastructure/service/logger"
)

type MockRateLimitService struct {
	mock.Mock
}

func (m *MockRateLimitService) CheckLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, key, limit, window)
	return args.Bool(0), args.Error(1)
}

func (m *MockRateLimitService) Increment(ctx context.Context, key string, window time.Duration) error {
	return m.Called(ctx, key, window).Error(0)
}

func (m *MockRateLimitService) Block(ctx context.Context, key string, duration time.Duration, reason string) error {
	return m.Called(ctx, key, duration, reason).Error(0)
}

func (m *MockRateLimitService) IsBlocked(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockRateLimitService) GetAttempts(ctx context.Context, key string) (int, error) {
	args := m.Called(ctx, key)
	return args.Int(0), args.Error(1)
}

var refreshRule = RateLimitRule{Name: "refresh", Limit: 3, Window: time.Hour, BlockDuration: 15 * time.Minute}

func serveLimited(svc *MockRateLimitService) (*httptest.ResponseRecorder, bool) {
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/token/refresh", nil)
	req.RemoteAddr = "10.1.2.3:5555"
	rec := httptest.NewRecorder()

	NewRateLimitMiddleware(svc, logger.NewNopLogger()).Limit(refreshRule)(next).ServeHTTP(rec, req)
	return rec, called
}

func TestRateLimit_AllowsAndCounts(t *testing.T) {
	svc := new(MockRateLimitService)
	svc.On("IsBlocked", mock.Anything, "refresh:ip:10.1.2.3").Return(false, nil)
	svc.On("CheckLimit", mock.Anything, "refresh:ip:10.1.2.3", 3, time.Hour).Return(true, nil)
	svc.On("Increment", mock.Anything, "refresh:ip:10.1.2.3", time.Hour).Return(nil)

	rec, called := serveLimited(svc)

	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestRateLimit_BlocksOverLimit(t *testing.T) {
	svc := new(MockRateLimitService)
	svc.On("IsBlocked", mock.Anything, "refresh:ip:10.1.2.3").Return(false, nil)
	svc.On("CheckLimit", mock.Anything, "refresh:ip:10.1.2.3", 3, time.Hour).Return(false, nil)
	svc.On("Block", mock.Anything, "refresh:ip:10.1.2.3", 15*time.Minute, "Rate limit exceeded").Return(nil)

	rec, called := serveLimited(svc)

	assert.False(t, called)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "900", rec.Header().Get("Retry-After"))
	svc.AssertNotCalled(t, "Increment", mock.Anything, mock.Anything, mock.Anything)
}

func TestRateLimit_AlreadyBlocked(t *testing.T) {
	svc := new(MockRateLimitService)
	svc.On("IsBlocked", mock.Anything, "refresh:ip:10.1.2.3").Return(true, nil)

	rec, called := serveLimited(svc)

	assert.False(t, called)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	svc.AssertNotCalled(t, "CheckLimit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRateLimit_FailsOpenOnBackendError(t *testing.T) {
	backendErr := errors.New("redis down")
	svc := new(MockRateLimitService)
	svc.On("IsBlocked", mock.Anything, mock.Anything).Return(false, backendErr)
	svc.On("CheckLimit", mock.Anything, mock.Anything, 3, time.Hour).Return(false, backendErr)
	svc.On("Increment", mock.Anything, mock.Anything, time.Hour).Return(backendErr)

	rec, called := serveLimited(svc)

	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
}

type countingLimiter struct {
	counts  map[string]int
	blocked map[string]bool
}

func newCountingLimiter() *countingLimiter {
	return &countingLimiter{counts: map[string]int{}, blocked: map[string]bool{}}
}

func (c *countingLimiter) CheckLimit(_ context.Context, key string, limit int, _ time.Duration) (bool, error) {
	return c.counts[key] < limit, nil
}

func (c *countingLimiter) Increment(_ context.Context, key string, _ time.Duration) error {
	c.counts[key]++
	return nil
}

func (c *countingLimiter) Block(_ context.Context, key string, _ time.Duration, _ string) error {
	c.blocked[key] = true
	return nil
}

func (c *countingLimiter) IsBlocked(_ context.Context, key string) (bool, error) {
	return c.blocked[key], nil
}

func (c *countingLimiter) GetAttempts(_ context.Context, key string) (int, error) {
	return c.counts[key], nil
}

func TestRateLimit_RotatingForwardedForStillLimited(t *testing.T) {
	limiter := newCountingLimiter()
	reached := 0
	h := NewRateLimitMiddleware(limiter, logger.NewNopLogger()).Limit(refreshRule)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reached++
			w.WriteHeader(http.StatusOK)
		}))

	for i := 0; i < 100; i++ {
		req := httptest.NewRequest(http.MethodPost, "/token/refresh", nil)
		req.RemoteAddr = "198.51.100.9:40000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i))
		req.Header.Set("X-Real-IP", fmt.Sprintf("192.0.2.%d", i))
		h.ServeHTTP(httptest.NewRecorder(), req)
	}

	assert.Equal(t, refreshRule.Limit, reached)
	assert.Equal(t, refreshRule.Limit, limiter.counts["refresh:ip:198.51.100.9"])
}

func TestRateLimit_TrustedProxyForwardsClient(t *testing.T) {
	limiter := newCountingLimiter()
	h := NewRateLimitMiddleware(limiter, logger.NewNopLogger(), WithTrustedProxies([]string{"10.0.0.0/8"})).Limit(refreshRule)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	for _, client := range []string{"203.0.113.1", "203.0.113.2"} {
		req := httptest.NewRequest(http.MethodPost, "/token/refresh", nil)
		req.RemoteAddr = "10.0.0.5:1234"
		req.Header.Set("X-Forwarded-For", client)
		h.ServeHTTP(httptest.NewRecorder(), req)
	}

	assert.Equal(t, 1, limiter.counts["refresh:ip:203.0.113.1"])
	assert.Equal(t, 1, limiter.counts["refresh:ip:203.0.113.2"])
	assert.Zero(t, limiter.counts["refresh:ip:10.0.0.5"])
}

func TestResolveClientIP(t *testing.T) {
	trusted := parseTrustedProxies([]string{"10.0.0.0/8", "192.168.0.7", "bogus"})
	require.Len(t, trusted, 2)

	tests := []struct {
		name    string
		remote  string
		xff     string
		realIP  string
		trusted bool
		want    string
	}{
		{name: "peer only", remote: "192.168.0.7:4000", want: "192.168.0.7"},
		{name: "untrusted peer ignores headers", remote: "198.51.100.9:4000", xff: "203.0.113.5", realIP: "172.16.0.1", trusted: true, want: "198.51.100.9"},
		{name: "headers ignored without trusted list", remote: "10.0.0.1:4000", xff: "203.0.113.5", want: "10.0.0.1"},
		{name: "trusted peer real ip", remote: "192.168.0.7:4000", realIP: "172.16.0.1", trusted: true, want: "172.16.0.1"},
		{name: "rightmost untrusted hop", remote: "10.0.0.1:4000", xff: "1.2.3.4, 203.0.113.5, 10.0.0.2", trusted: true, want: "203.0.113.5"},
		{name: "garbage hop stops the walk", remote: "10.0.0.1:4000", xff: "203.0.113.5, nope", trusted: true, want: "10.0.0.1"},
		{name: "ipv6 peer", remote: "[2001:db8::1]:443", want: "2001:db8::1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}

			var list []*net.IPNet
			if tt.trusted {
				list = trusted
			}
			assert.Equal(t, tt.want, resolveClientIP(req, list))
		})
	}
}

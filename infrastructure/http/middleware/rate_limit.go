package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fixora/tasklist/application/port/inbound"
	"github.com/fixora/tasklist/infrastructure/http/response"
	"github.com/fixora/tasklist/infrastructure/service/logger"
)

// RateLimitRule limits one class of route per client IP.
type RateLimitRule struct {
	Name          string
	Limit         int
	Window        time.Duration
	BlockDuration time.Duration
}

type RateLimitMiddleware struct {
	rateLimitService inbound.RateLimitService
	logger           logger.Logger
	trustedProxies   []*net.IPNet
}

type RateLimitOption func(*RateLimitMiddleware)

// WithTrustedProxies lists the peers (IPs or CIDRs) allowed to name the client
// through X-Forwarded-For or X-Real-IP. Entries that parse as neither are ignored.
func WithTrustedProxies(entries []string) RateLimitOption {
	return func(m *RateLimitMiddleware) {
		m.trustedProxies = parseTrustedProxies(entries)
	}
}

func NewRateLimitMiddleware(rateLimitService inbound.RateLimitService, logger logger.Logger, opts ...RateLimitOption) *RateLimitMiddleware {
	m := &RateLimitMiddleware{
		rateLimitService: rateLimitService,
		logger:           logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Limit returns a middleware enforcing rule. Backend errors fail open.
func (m *RateLimitMiddleware) Limit(rule RateLimitRule) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m.rateLimitService == nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			clientIP := resolveClientIP(r, m.trustedProxies)
			key := fmt.Sprintf("%s:ip:%s", rule.Name, clientIP)
			fields := map[string]interface{}{
				"ip":   clientIP,
				"key":  key,
				"path": redactPath(r.URL.Path),
			}

			isBlocked, err := m.rateLimitService.IsBlocked(ctx, key)
			if err != nil {
				m.logger.Error(ctx, "Failed to check block status", err, fields)
			}
			if isBlocked {
				logger.LogSecurityEvent(ctx, m.logger, "rate_limit_blocked", "MEDIUM", fields)
				tooManyRequests(w, rule.BlockDuration)
				return
			}

			allowed, err := m.rateLimitService.CheckLimit(ctx, key, rule.Limit, rule.Window)
			if err != nil {
				m.logger.Error(ctx, "Failed to check rate limit", err, fields)
				allowed = true
			}

			if !allowed {
				if err := m.rateLimitService.Block(ctx, key, rule.BlockDuration, "Rate limit exceeded"); err != nil {
					m.logger.Error(ctx, "Failed to block IP", err, fields)
				}
				logger.LogSecurityEvent(ctx, m.logger, "rate_limit_exceeded", "HIGH", fields)
				tooManyRequests(w, rule.BlockDuration)
				return
			}

			if err := m.rateLimitService.Increment(ctx, key, rule.Window); err != nil {
				m.logger.Error(ctx, "Failed to increment rate limit", err, fields)
			}

			next.ServeHTTP(w, r)
		})
	}
}

func tooManyRequests(w http.ResponseWriter, retryAfter time.Duration) {
	w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
	response.Error(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
}

// peerIP is the host part of the TCP peer address.
func peerIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// resolveClientIP returns the address a request is attributed to. Forwarding headers
// are only read when the peer is a trusted proxy; X-Forwarded-For is walked
// right to left and the first hop that is not itself trusted wins.
func resolveClientIP(r *http.Request, trusted []*net.IPNet) string {
	peer := peerIP(r)
	if !isTrusted(net.ParseIP(peer), trusted) {
		return peer
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			ip := net.ParseIP(strings.TrimSpace(hops[i]))
			if ip == nil {
				break
			}
			if !isTrusted(ip, trusted) {
				return ip.String()
			}
		}
	}

	if ip := net.ParseIP(strings.TrimSpace(r.Header.Get("X-Real-IP"))); ip != nil {
		return ip.String()
	}

	return peer
}

func isTrusted(ip net.IP, trusted []*net.IPNet) bool {
	if ip == nil {
		return false
	}
	for _, n := range trusted {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

func parseTrustedProxies(entries []string) []*net.IPNet {
	nets := make([]*net.IPNet, 0, len(entries))
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if _, n, err := net.ParseCIDR(entry); err == nil {
			nets = append(nets, n)
			continue
		}
		ip := net.ParseIP(entry)
		if ip == nil {
			continue
		}
		bits := 128
		if ip4 := ip.To4(); ip4 != nil {
			ip, bits = ip4, 32
		}
		nets = append(nets, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
	}
	return nets
}

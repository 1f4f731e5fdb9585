package middleware

import (
	"context"
	"net/http"

	"github.com/fixora/tasklist/application/port/outbound"
	domainerr "github.com/fixora/tasklist/domain/error"
	"github.com/fixora/tasklist/infrastructure/http/response"
	"github.com/fixora/tasklist/infrastructure/service/logger"
)

// Caller-facing messages for rejected requests.
const (
	MessageTokenExpired = "Access token expired"
	MessageTokenInvalid = "Invalid or missing token"
	MessageAuthFailed   = "Authentication failed"
)

// Identity is the authenticated caller attached to the request context.
type Identity struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

type identityKey struct{}

// OutcomeRecorder receives "ok" or the error code of every gate decision.
type OutcomeRecorder interface {
	RecordAuthOutcome(outcome string)
}

type AuthMiddleware struct {
	tokenService outbound.TokenService
	logger       logger.Logger
	recorder     OutcomeRecorder
}

type AuthOption func(*AuthMiddleware)

func WithOutcomeRecorder(recorder OutcomeRecorder) AuthOption {
	return func(m *AuthMiddleware) {
		m.recorder = recorder
	}
}

func NewAuthMiddleware(tokenService outbound.TokenService, log logger.Logger, opts ...AuthOption) *AuthMiddleware {
	m := &AuthMiddleware{
		tokenService: tokenService,
		logger:       log,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// RequireAuth rejects the request unless it carries a valid access token.
// The downstream handler never runs on failure.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		token, err := m.tokenService.ExtractBearerToken(r.Header.Get("Authorization"))
		if err != nil {
			m.reject(ctx, w, r, err)
			return
		}

		claims, err := m.tokenService.VerifyAccessToken(ctx, token)
		if err != nil {
			m.reject(ctx, w, r, err)
			return
		}

		identity := &Identity{UserID: claims.UserID, Email: claims.Email}
		logger.LogAuthEvent(ctx, m.logger, "access_token_verified", identity.UserID, peerIP(r), true, nil)
		m.record("ok")

		next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, identity)))
	})
}

func (m *AuthMiddleware) reject(ctx context.Context, w http.ResponseWriter, r *http.Request, err error) {
	message := ClassifyAuthError(err)
	code := string(domainerr.KindOf(err))
	m.record(code)
	logger.LogAuthEvent(ctx, m.logger, "access_token_rejected", "", peerIP(r), false, map[string]interface{}{
		"code":   code,
		"reason": message,
		"path":   redactPath(r.URL.Path),
	})
	response.Unauthorized(w, message)
}

func (m *AuthMiddleware) record(outcome string) {
	if m.recorder != nil {
		m.recorder.RecordAuthOutcome(outcome)
	}
}

// ClassifyAuthError maps an authentication failure to one of three
// caller-facing categories: refresh and retry, re-authenticate, or unknown.
func ClassifyAuthError(err error) string {
	switch domainerr.KindOf(err) {
	case domainerr.ErrCodeTokenExpired:
		return MessageTokenExpired
	case domainerr.ErrCodeTokenInvalid,
		domainerr.ErrCodeHeaderMalformed,
		domainerr.ErrCodeHeaderMissing,
		domainerr.ErrCodeTokenMissing:
		return MessageTokenInvalid
	default:
		return MessageAuthFailed
	}
}

// WithIdentity returns a copy of ctx carrying identity.
func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// GetIdentity retrieves the authenticated caller from context
func GetIdentity(ctx context.Context) *Identity {
	if identity, ok := ctx.Value(identityKey{}).(*Identity); ok {
		return identity
	}
	return nil
}

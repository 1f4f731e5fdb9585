package outbound

import (
	"context"
	"time"

	"github.com/fixora/tasklist/domain/valueobject"
)

// TokenClaims is the identity embedded in a signed token. IssuedAt and
// ExpiresAt are filled in by the codec at signing time.
type TokenClaims struct {
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	IssuedAt  time.Time `json:"issuedAt,omitempty"`
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
}

// TokenService issues and verifies access/refresh tokens. Every error it
// returns carries a domain/error code.
type TokenService interface {
	IssueTokenPair(ctx context.Context, userID, email string) (*valueobject.TokenPair, error)
	VerifyAccessToken(ctx context.Context, token string) (*TokenClaims, error)
	VerifyRefreshToken(ctx context.Context, token string) (*TokenClaims, error)
	RotateAccessToken(ctx context.Context, refreshToken string) (string, error)
	ExtractBearerToken(headerValue string) (string, error)
	AccessTokenTTL() time.Duration
}

package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/fixora/tasklist/application/port/outbound"
	domainerr "github.com/fixora/tasklist/domain/error"
)

// tokenClaims is the wire form of outbound.TokenClaims. The json names match
// tokens issued by earlier deployments so they keep verifying.
type tokenClaims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Codec signs identity claims into compact HS256 JWTs and verifies them.
// It holds no key material; secrets are passed per call.
type Codec struct {
	now func() time.Time
}

func NewCodec(now func() time.Time) *Codec {
	if now == nil {
		now = time.Now
	}
	return &Codec{now: now}
}

// Sign stamps iat=now and exp=now+ttl onto claims and signs them with secret.
// NumericDate has second precision, so now is truncated before adding ttl.
func (c *Codec) Sign(claims outbound.TokenClaims, secret []byte, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", domainerr.ErrSecretMissing()
	}

	issuedAt := c.now().Truncate(time.Second)
	wire := tokenClaims{
		UserID: claims.UserID,
		Email:  claims.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.UserID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, wire).SignedString(secret)
	if err != nil {
		return "", domainerr.ErrEncoding(err)
	}

	return signed, nil
}

// Verify checks the HMAC (constant time, inside golang-jwt) before any claim,
// then enforces exp against the codec clock.
func (c *Codec) Verify(tokenString string, secret []byte) (*outbound.TokenClaims, error) {
	if len(secret) == 0 {
		return nil, domainerr.ErrSecretMissing()
	}

	var wire tokenClaims
	token, err := jwt.ParseWithClaims(tokenString, &wire,
		func(t *jwt.Token) (interface{}, error) {
			return secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domainerr.ErrTokenExpired(err)
		}
		return nil, domainerr.ErrSignatureInvalid(err)
	}

	if !token.Valid || wire.UserID == "" {
		return nil, domainerr.ErrSignatureInvalid(errors.New("token carries no user identity"))
	}

	claims := &outbound.TokenClaims{
		UserID: wire.UserID,
		Email:  wire.Email,
	}
	if wire.IssuedAt != nil {
		claims.IssuedAt = wire.IssuedAt.Time
	}
	if wire.ExpiresAt != nil {
		claims.ExpiresAt = wire.ExpiresAt.Time
	}

	return claims, nil
}

package jwt

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fixora/tasklist/application/port/outbound"
	domainerr "github.com/fixora/tasklist/domain/error"
	"github.com/fixora/tasklist/domain/valueobject"
	"github.com/fixora/tasklist/infrastructure/config"
	"github.com/fixora/tasklist/infrastructure/service/logger"
)

const bearerPrefix = "Bearer "

// JWTService issues and verifies the access/refresh token pair. Access and
// refresh tokens are signed with independent secrets.
type JWTService struct {
	codec           *Codec
	accessSecret    []byte
	refreshSecret   []byte
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
	logger          logger.Logger
}

var _ outbound.TokenService = (*JWTService)(nil)

type Option func(*JWTService)

// WithClock replaces the wall clock used for iat/exp and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *JWTService) {
		s.codec = NewCodec(now)
	}
}

func NewJWTService(cfg *config.Config, log logger.Logger, opts ...Option) (*JWTService, error) {
	if cfg.JWTAlgorithm != "HS256" {
		return nil, fmt.Errorf("unsupported JWT algorithm: %s", cfg.JWTAlgorithm)
	}

	service := &JWTService{
		codec:           NewCodec(time.Now),
		accessSecret:    []byte(cfg.AccessTokenSecret),
		refreshSecret:   []byte(cfg.RefreshTokenSecret),
		accessTokenTTL:  cfg.AccessTokenTTL,
		refreshTokenTTL: cfg.RefreshTokenTTL,
		logger:          log.WithFields(map[string]interface{}{"component": "token_service"}),
	}
	for _, opt := range opts {
		opt(service)
	}

	return service, nil
}

func (s *JWTService) AccessTokenTTL() time.Duration {
	return s.accessTokenTTL
}

// IssueTokenPair returns both tokens or neither. iat is the clock truncated to
// the second, so a token lives up to 999ms less than its TTL.
func (s *JWTService) IssueTokenPair(ctx context.Context, userID, email string) (*valueobject.TokenPair, error) {
	claims := outbound.TokenClaims{UserID: userID, Email: email}

	accessToken, err := s.codec.Sign(claims, s.accessSecret, s.accessTokenTTL)
	if err != nil {
		return nil, s.issuanceFailed(ctx, "access", userID, err)
	}

	refreshToken, err := s.codec.Sign(claims, s.refreshSecret, s.refreshTokenTTL)
	if err != nil {
		return nil, s.issuanceFailed(ctx, "refresh", userID, err)
	}

	return valueobject.NewTokenPair(accessToken, refreshToken), nil
}

func (s *JWTService) VerifyAccessToken(ctx context.Context, token string) (*outbound.TokenClaims, error) {
	claims, err := s.codec.Verify(token, s.accessSecret)
	if err == nil {
		return claims, nil
	}

	switch domainerr.KindOf(err) {
	case domainerr.ErrCodeTokenExpired:
		return nil, domainerr.ErrTokenExpired(err)
	case domainerr.ErrCodeSignatureInvalid:
		return nil, domainerr.ErrTokenInvalid(err)
	default:
		s.logger.Error(ctx, "Access token verification failed unexpectedly", err, nil)
		return nil, domainerr.ErrVerificationFailed(err)
	}
}

func (s *JWTService) VerifyRefreshToken(ctx context.Context, token string) (*outbound.TokenClaims, error) {
	claims, err := s.codec.Verify(token, s.refreshSecret)
	if err == nil {
		return claims, nil
	}

	switch domainerr.KindOf(err) {
	case domainerr.ErrCodeTokenExpired:
		return nil, domainerr.ErrRefreshTokenExpired(err)
	case domainerr.ErrCodeSignatureInvalid:
		return nil, domainerr.ErrRefreshTokenInvalid(err)
	default:
		s.logger.Error(ctx, "Refresh token verification failed unexpectedly", err, nil)
		return nil, domainerr.ErrVerificationFailed(err)
	}
}

// RotateAccessToken mints a fresh access token from a valid refresh token.
// The refresh token itself is not reissued and stays valid until its own exp.
func (s *JWTService) RotateAccessToken(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.VerifyRefreshToken(ctx, refreshToken)
	if err != nil {
		return "", err
	}

	accessToken, err := s.codec.Sign(
		outbound.TokenClaims{UserID: claims.UserID, Email: claims.Email},
		s.accessSecret,
		s.accessTokenTTL,
	)
	if err != nil {
		return "", s.issuanceFailed(ctx, "access", claims.UserID, err)
	}

	return accessToken, nil
}

func (s *JWTService) ExtractBearerToken(headerValue string) (string, error) {
	if headerValue == "" {
		return "", domainerr.ErrHeaderMissing()
	}

	if !strings.HasPrefix(headerValue, bearerPrefix) {
		return "", domainerr.ErrHeaderMalformed()
	}

	token := strings.TrimSpace(headerValue[len(bearerPrefix):])
	if token == "" {
		return "", domainerr.ErrTokenMissing()
	}

	return token, nil
}

func (s *JWTService) issuanceFailed(ctx context.Context, tokenType, userID string, err error) error {
	s.logger.Error(ctx, "Failed to sign token", err, map[string]interface{}{
		"token_type": tokenType,
		"user_id":    userID,
	})
	return domainerr.ErrIssuanceFailed(err)
}

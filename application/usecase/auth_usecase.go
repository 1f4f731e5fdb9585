package usecase

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/fixora/tasklist/application/port/inbound"
	"github.com/fixora/tasklist/application/port/outbound"
	domainerr "github.com/fixora/tasklist/domain/error"
	"github.com/fixora/tasklist/infrastructure/service/logger"
)

const tokenTypeBearer = "Bearer"

type AuthUseCase struct {
	tokenService outbound.TokenService
	logger       logger.Logger
}

func NewAuthUseCase(tokenService outbound.TokenService, log logger.Logger) inbound.AuthUseCase {
	return &AuthUseCase{
		tokenService: tokenService,
		logger:       log,
	}
}

// Refresh returns a new access token. Token service errors are returned as is
// so the caller can tell an expired refresh token from a bad one.
func (uc *AuthUseCase) Refresh(ctx context.Context, req inbound.RefreshRequest) (*inbound.RefreshResponse, error) {
	refreshToken := strings.TrimSpace(req.RefreshToken)
	if refreshToken == "" {
		return nil, inbound.ErrMissingRefreshToken
	}

	accessToken, err := uc.tokenService.RotateAccessToken(ctx, refreshToken)
	if err != nil {
		logger.LogAuthEvent(ctx, uc.logger, "refresh_rejected", "", "", false, map[string]interface{}{
			"code": string(domainerr.KindOf(err)),
		})
		return nil, err
	}

	return &inbound.RefreshResponse{
		AccessToken: accessToken,
		TokenType:   tokenTypeBearer,
		ExpiresIn:   FormatTTL(uc.tokenService.AccessTokenTTL()),
	}, nil
}

// FormatTTL renders d in the largest whole unit: 15m, 7d, 1h, 90s.
func FormatTTL(d time.Duration) string {
	switch {
	case d <= 0:
		return "0s"
	case d%(24*time.Hour) == 0:
		return formatUnit(int64(d/(24*time.Hour)), "d")
	case d%time.Hour == 0:
		return formatUnit(int64(d/time.Hour), "h")
	case d%time.Minute == 0:
		return formatUnit(int64(d/time.Minute), "m")
	default:
		return formatUnit(int64(d/time.Second), "s")
	}
}

func formatUnit(n int64, unit string) string {
	return strconv.FormatInt(n, 10) + unit
}

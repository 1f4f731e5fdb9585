package inbound

import (
	"context"

	"github.com/fixora/tasklist/domain/entity"
)

type LookupUserResponse struct {
	User         *entity.User `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type RefreshResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
	ExpiresIn   string `json:"expiresIn"`
}

// UserUseCase registers users and performs the email lookup that issues tokens.
type UserUseCase interface {
	CreateUser(ctx context.Context, email string) (*entity.User, error)
	LookupUser(ctx context.Context, email string) (*LookupUserResponse, error)
}

// AuthUseCase exchanges refresh tokens for access tokens.
type AuthUseCase interface {
	Refresh(ctx context.Context, req RefreshRequest) (*RefreshResponse, error)
}

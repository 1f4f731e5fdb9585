package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/fixora/tasklist/application/port/inbound"
	"github.com/fixora/tasklist/application/port/outbound"
	"github.com/fixora/tasklist/domain/entity"
	"github.com/fixora/tasklist/infrastructure/service/logger"
)

type UserUseCase struct {
	userRepository outbound.UserRepository
	tokenService   outbound.TokenService
	logger         logger.Logger
}

func NewUserUseCase(
	userRepo outbound.UserRepository,
	tokenService outbound.TokenService,
	log logger.Logger,
) inbound.UserUseCase {
	return &UserUseCase{
		userRepository: userRepo,
		tokenService:   tokenService,
		logger:         log,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (uc *UserUseCase) CreateUser(ctx context.Context, email string) (*entity.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, inbound.ErrInvalidEmail
	}

	user := entity.NewUser(uuid.NewString(), email)
	if err := uc.userRepository.Create(ctx, user); err != nil {
		if errors.Is(err, outbound.ErrUserAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	uc.logger.Info(ctx, "User created", map[string]interface{}{
		"user_id": user.ID,
		"email":   logger.RedactEmail(email),
	})

	return user, nil
}

// LookupUser resolves email to a user and issues a fresh token pair for it.
func (uc *UserUseCase) LookupUser(ctx context.Context, email string) (*inbound.LookupUserResponse, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, inbound.ErrInvalidEmail
	}

	user, err := uc.userRepository.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, outbound.ErrUserNotFound) {
			logger.LogAuthEvent(ctx, uc.logger, "lookup_unknown_email", "", "", false, map[string]interface{}{
				"email": logger.RedactEmail(email),
			})
			return nil, err
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	pair, err := uc.tokenService.IssueTokenPair(ctx, user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	logger.LogAuthEvent(ctx, uc.logger, "token_pair_issued", user.ID, "", true, nil)

	return &inbound.LookupUserResponse{
		User:         user,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

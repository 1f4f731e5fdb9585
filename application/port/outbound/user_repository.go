package outbound

import (
	"context"
	"errors"

	"github.com/fixora/tasklist/domain/entity"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
)

type UserRepository interface {
	// FindByEmail returns ErrUserNotFound when no user has email.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	// Create returns ErrUserAlreadyExists when email is taken.
	Create(ctx context.Context, user *entity.User) error
}

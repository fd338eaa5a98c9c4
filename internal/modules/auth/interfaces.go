package auth

import (
	"context"

	"docvault/internal/domain"
)

// UserRepositoryInterface — only the methods the auth service uses
type UserRepositoryInterface interface {
	Create(ctx context.Context, u *domain.User) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}

type DepartmentReader interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

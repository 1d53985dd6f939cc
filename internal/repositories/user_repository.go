package repositories

import (
	"context"

	"nexora/internal/models"
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	GetBySubject(ctx context.Context, subject string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}

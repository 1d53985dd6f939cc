package repositories

import (
	"context"

	"nexora/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// Create creates a new user in the database.
func (r *GORMUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return translateError("create user", err)
	}
	return nil
}

// Update saves the profile fields of an existing user.
func (r *GORMUserRepository) Update(ctx context.Context, user *models.User) error {
	res := r.db.WithContext(ctx).Model(user).Updates(map[string]any{
		"email":   user.Email,
		"name":    user.Name,
		"picture": user.Picture,
	})
	if res.Error != nil {
		return translateError("update user", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFoundError("user", user.ID)
	}
	return nil
}

// GetBySubject retrieves a user by their identity provider subject.
func (r *GORMUserRepository) GetBySubject(ctx context.Context, subject string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "subject = ?", subject).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, notFoundError("user", subject)
		}
		return nil, translateError("get user by subject", err)
	}
	return &user, nil
}

// GetByID retrieves a user by their ID from the database.
func (r *GORMUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, notFoundError("user", id)
		}
		return nil, translateError("get user by ID", err)
	}
	return &user, nil
}

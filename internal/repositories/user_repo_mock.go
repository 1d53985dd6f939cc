package repositories

import (
	"context"
	"sync"
	"time"

	"nexora/internal/models"

	"github.com/google/uuid"
)

// MockUserRepository is an in-memory implementation of UserRepository.
type MockUserRepository struct {
	users map[string]models.User
	mu    sync.RWMutex
}

// NewMockUserRepository creates a new instance of MockUserRepository.
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users: make(map[string]models.User),
	}
}

// Create adds a new user.
func (r *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = *user
	return nil
}

// Update replaces the stored profile of an existing user.
func (r *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.users[user.ID]
	if !ok {
		return notFoundError("user", user.ID)
	}
	existing.Email = user.Email
	existing.Name = user.Name
	existing.Picture = user.Picture
	existing.UpdatedAt = time.Now()
	r.users[user.ID] = existing
	*user = existing
	return nil
}

// GetBySubject returns a user by their identity provider subject.
func (r *MockUserRepository) GetBySubject(ctx context.Context, subject string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Subject == subject {
			user := u
			return &user, nil
		}
	}
	return nil, notFoundError("user", subject)
}

// GetByID returns a user by their ID.
func (r *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, notFoundError("user", id)
	}
	return &user, nil
}

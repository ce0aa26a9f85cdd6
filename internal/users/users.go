package users

import (
	"context"
	"errors"
	"time"

	"github.com/jmwislek/order-notify-service/internal/models"
	"github.com/jmwislek/order-notify-service/internal/store"
	"github.com/jmwislek/order-notify-service/internal/validation"
)

// ErrInvalidEmail is returned by CreateUser when the email fails the
// syntactic check. Nothing is written to the store in that case.
var ErrInvalidEmail = errors.New("invalid email format")

// keyPrefix namespaces user records in the shared store.
const keyPrefix = "user:"

// Repository persists user records in a connected-gated store. Store errors
// (ErrNotConnected in particular) pass through unchanged so callers can
// match them with errors.Is.
type Repository struct {
	db store.Store[models.User]
}

// NewRepository creates a Repository backed by db.
func NewRepository(db store.Store[models.User]) *Repository {
	return &Repository{db: db}
}

// CreateUser validates the email, then builds and saves the record with a
// fresh creation timestamp. Validation happens before any store access.
func (r *Repository) CreateUser(ctx context.Context, id, name, email string) (models.User, error) {
	if !validation.ValidateEmail(email) {
		return models.User{}, ErrInvalidEmail
	}
	user := models.User{
		ID:        id,
		Name:      name,
		Email:     email,
		CreatedAt: time.Now(),
	}
	if err := r.db.Save(ctx, userKey(id), user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

// GetUser retrieves the record for id. Returns (user, true, nil) when
// present and (zero, false, nil) when no such user exists.
func (r *Repository) GetUser(ctx context.Context, id string) (models.User, bool, error) {
	return r.db.Get(ctx, userKey(id))
}

func userKey(id string) string {
	return keyPrefix + id
}

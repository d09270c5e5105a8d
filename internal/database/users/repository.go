// Package users provides database operations for account management.
//
// # Usage
//
//	repo := users.NewRepository(db)
//	page, err := repo.List(query)
package users

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/bookstore/internal/entities"
	"github.com/mrlokans/bookstore/internal/listquery"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email is already registered")
)

// Allowed whitelists the list-protocol fields for the users table.
var Allowed = listquery.Allowed{
	FilterFields: []string{"fullName", "email"},
	SortFields:   []string{"createdAt", "fullName", "email"},
	DateField:    "createdAt",
}

// Repository handles all user database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns one page of users matching the query, together with the
// authoritative pagination meta for that page.
func (r *Repository) List(q listquery.Query) (listquery.Page[entities.User], error) {
	var page listquery.Page[entities.User]

	var total int64
	if err := r.db.Model(&entities.User{}).Scopes(q.Scope()).Count(&total).Error; err != nil {
		return page, fmt.Errorf("failed to count users: %w", err)
	}

	users := make([]entities.User, 0, q.PageSize)
	err := r.db.Scopes(q.Scope()).
		Offset(q.Offset()).
		Limit(q.PageSize).
		Find(&users).Error
	if err != nil {
		return page, fmt.Errorf("failed to list users: %w", err)
	}

	page.Result = users
	page.Meta = listquery.NewMeta(q.Current, q.PageSize, total)
	return page, nil
}

// Create inserts a new user. The caller provides the bcrypt hash.
func (r *Repository) Create(user *entities.User) error {
	var existing entities.User
	err := r.db.Where("email = ?", user.Email).First(&existing).Error
	if err == nil {
		return ErrEmailTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check existing user: %w", err)
	}

	if err := r.db.Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// Update changes the mutable profile fields. Email is immutable after
// creation, so only fullName and phone are ever written.
func (r *Repository) Update(id uint, fullName, phone string) (*entities.User, error) {
	user, err := r.GetByID(id)
	if err != nil {
		return nil, err
	}

	err = r.db.Model(user).Updates(map[string]any{
		"full_name": fullName,
		"phone":     phone,
	}).Error
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// Delete removes a user.
func (r *Repository) Delete(id uint) error {
	result := r.db.Delete(&entities.User{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// BulkCreate inserts a batch of users row by row, counting successes and
// failures. A duplicate email fails that row only; there is no rollback
// and no per-row retry.
func (r *Repository) BulkCreate(batch []entities.User) (created, failed int) {
	for i := range batch {
		if err := r.Create(&batch[i]); err != nil {
			failed++
			continue
		}
		created++
	}
	return created, failed
}

// GetByID retrieves a user by ID.
func (r *Repository) GetByID(id uint) (*entities.User, error) {
	var user entities.User
	err := r.db.First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetByEmail retrieves a user by their email address.
func (r *Repository) GetByEmail(email string) (*entities.User, error) {
	var user entities.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

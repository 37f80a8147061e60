package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"todoservice/internal/apperr"
	"todoservice/internal/models"
)

// uniqueViolation is the Postgres error code for a unique constraint failure.
const uniqueViolation = "23505"

// Repository provides database operations
type Repository struct {
	db *sql.DB
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateUser inserts a new user record. The username uniqueness
// constraint is enforced by the storage layer; a violation is reported
// as a duplicate-username error.
func (r *Repository) CreateUser(user *models.User) error {
	query := `
		INSERT INTO "user" (username, hashed_password)
		VALUES ($1, $2)
		RETURNING id`
	err := r.db.QueryRow(query, user.Username, user.HashedPassword).Scan(&user.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return apperr.E(apperr.KindDuplicateUsername, "username is already taken")
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindUserByUsername retrieves a user by username, or nil if absent.
func (r *Repository) FindUserByUsername(username string) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, username, hashed_password
		FROM "user"
		WHERE username = $1`
	err := r.db.QueryRow(query, username).
		Scan(&user.ID, &user.Username, &user.HashedPassword)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// FindUserByID retrieves a user by id, or nil if absent.
func (r *Repository) FindUserByID(id int64) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, username, hashed_password
		FROM "user"
		WHERE id = $1`
	err := r.db.QueryRow(query, id).
		Scan(&user.ID, &user.Username, &user.HashedPassword)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

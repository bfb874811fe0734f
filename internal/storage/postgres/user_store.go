package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// ErrEmailTaken is returned by Create when the email is already registered.
var ErrEmailTaken = errors.New("email already registered")

// ErrUserNotFound is returned by lookups that match no user.
var ErrUserNotFound = errors.New("user not found")

// User is a registered account.
type User struct {
	ID             int64
	Email          string
	HashedPassword string
	Name           string
}

// UserStore persists accounts.
type UserStore struct {
	db DB
}

// NewUserStore creates a UserStore.
func NewUserStore(db DB) *UserStore {
	return &UserStore{db: db}
}

const insertUserSQL = `
INSERT INTO users (email, hashed_password, name)
VALUES ($1, $2, $3)
RETURNING id`

// Create registers a new account and returns it with the assigned ID.
func (s *UserStore) Create(ctx context.Context, email, hashedPassword, name string) (User, error) {
	u := User{Email: email, HashedPassword: hashedPassword, Name: name}
	err := s.db.QueryRow(ctx, insertUserSQL, email, hashedPassword, name).Scan(&u.ID)
	if isUniqueViolation(err) {
		return User{}, ErrEmailTaken
	}
	if err != nil {
		return User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

const getUserByEmailSQL = `
SELECT id, email, hashed_password, name FROM users WHERE email = $1`

// GetByEmail looks up an account by email.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (User, error) {
	var u User
	err := s.db.QueryRow(ctx, getUserByEmailSQL, email).
		Scan(&u.ID, &u.Email, &u.HashedPassword, &u.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

const getUserByIDSQL = `
SELECT id, email, hashed_password, name FROM users WHERE id = $1`

// GetByID looks up an account by ID.
func (s *UserStore) GetByID(ctx context.Context, id int64) (User, error) {
	var u User
	err := s.db.QueryRow(ctx, getUserByIDSQL, id).
		Scan(&u.ID, &u.Email, &u.HashedPassword, &u.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("get user by id: %w", err)
	}
	return u, nil
}

package postgres

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"
)

func TestUserStoreCreate(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewUserStore(mock)

	rows := pgxmock.NewRows([]string{"id"}).AddRow(int64(42))
	mock.ExpectQuery("INSERT INTO users").
		WithArgs("ana@example.com", "$2a$10$hash", "Ana").
		WillReturnRows(rows)

	u, err := store.Create(context.Background(), "ana@example.com", "$2a$10$hash", "Ana")
	require.NoError(t, err)
	require.Equal(t, int64(42), u.ID)
	require.Equal(t, "ana@example.com", u.Email)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserStoreCreateDuplicateEmail(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewUserStore(mock)

	mock.ExpectQuery("INSERT INTO users").
		WithArgs("ana@example.com", "$2a$10$hash", "Ana").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err = store.Create(context.Background(), "ana@example.com", "$2a$10$hash", "Ana")
	require.ErrorIs(t, err, ErrEmailTaken)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserStoreGetByEmail(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewUserStore(mock)

	rows := pgxmock.NewRows([]string{"id", "email", "hashed_password", "name"}).
		AddRow(int64(42), "ana@example.com", "$2a$10$hash", "Ana")
	mock.ExpectQuery("SELECT id, email, hashed_password, name FROM users WHERE email").
		WithArgs("ana@example.com").
		WillReturnRows(rows)

	u, err := store.GetByEmail(context.Background(), "ana@example.com")
	require.NoError(t, err)
	require.Equal(t, int64(42), u.ID)
	require.Equal(t, "Ana", u.Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserStoreGetByIDNotFound(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewUserStore(mock)

	mock.ExpectQuery("SELECT id, email, hashed_password, name FROM users WHERE id").
		WithArgs(int64(99)).
		WillReturnError(pgx.ErrNoRows)

	_, err = store.GetByID(context.Background(), 99)
	require.ErrorIs(t, err, ErrUserNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

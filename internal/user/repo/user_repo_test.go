package repo

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/uvbuddy/uvbuddy-api/internal/user/entity"
)

func newMockRepo(t *testing.T) (*UserRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewUserRepo(sqlx.NewDb(db, "postgres")), mock
}

func TestCreateMapsUniqueViolation(t *testing.T) {
	t.Parallel()

	r, mock := newMockRepo(t)
	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&pq.Error{Code: pqUniqueViolation})

	err := r.Create(context.Background(), &entity.User{
		ID:           "u1",
		Name:         "Ana",
		Email:        "ana@example.com",
		PasswordHash: "$2a$10$hash",
	})
	require.ErrorIs(t, err, ErrDuplicateEmail)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateInserts(t *testing.T) {
	t.Parallel()

	r, mock := newMockRepo(t)
	mock.ExpectExec("INSERT INTO users").
		WithArgs("u1", "Ana", "ana@example.com", "$2a$10$hash").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := r.Create(context.Background(), &entity.User{
		ID:           "u1",
		Name:         "Ana",
		Email:        "ana@example.com",
		PasswordHash: "$2a$10$hash",
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByEmail(t *testing.T) {
	t.Parallel()

	r, mock := newMockRepo(t)
	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "created_at", "updated_at"}).
		AddRow("u1", "Ana", "ana@example.com", "$2a$10$hash", now, now)
	mock.ExpectQuery("SELECT id, name, email, password_hash").
		WithArgs("ana@example.com").
		WillReturnRows(rows)

	u, err := r.GetByEmail(context.Background(), "ana@example.com")
	require.NoError(t, err)
	require.Equal(t, "u1", u.ID)
	require.Equal(t, "Ana", u.Name)

	mock.ExpectQuery("SELECT id, name, email, password_hash").
		WithArgs("nobody@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err = r.GetByEmail(context.Background(), "nobody@example.com")
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePassword(t *testing.T) {
	t.Parallel()

	r, mock := newMockRepo(t)
	mock.ExpectExec("UPDATE users SET password_hash").
		WithArgs("u1", "$2a$10$newhash").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, r.UpdatePassword(context.Background(), "u1", "$2a$10$newhash"))

	mock.ExpectExec("UPDATE users SET password_hash").
		WithArgs("missing", "$2a$10$newhash").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.Error(t, r.UpdatePassword(context.Background(), "missing", "$2a$10$newhash"))
	require.NoError(t, mock.ExpectationsWereMet())
}

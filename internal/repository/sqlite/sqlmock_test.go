package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/intervw/internal/apperror"
	"github.com/sakif/intervw/internal/model"
	"github.com/sakif/intervw/internal/repository"
)

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		conn.Close()
	})
	return Wrap(conn), mock
}

func TestStorageFailuresAreNotDomainErrors(t *testing.T) {
	dbDown := errors.New("disk I/O error")

	t.Run("create user", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(`INSERT\s+INTO\s+users`).WillReturnError(dbDown)

		err := db.CreateUser(context.Background(), &model.User{Username: "ann", Email: "a@b.c", PasswordHash: "h"})
		require.ErrorIs(t, err, dbDown)
		assert.NotErrorIs(t, err, apperror.ErrValidation)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("count", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(`SELECT\s+COUNT\(\*\)\s+FROM\s+submissions`).WillReturnError(dbDown)

		_, err := db.Count(context.Background())
		require.ErrorIs(t, err, dbDown)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("list", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(`(?s)SELECT\s+.+\s+FROM\s+submissions\s+ORDER\s+BY\s+created_at\s+DESC`).
			WithArgs(10, 20).
			WillReturnError(dbDown)

		_, err := db.List(context.Background(), repository.ListOptions{Limit: 10, Offset: 20})
		require.ErrorIs(t, err, dbDown)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("update owned", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(`UPDATE\s+submissions`).WillReturnError(dbDown)

		_, err := db.UpdateOwned(context.Background(), "s1", "u1", model.SubmissionPatch{Name: "x"})
		require.ErrorIs(t, err, dbDown)
		assert.NotErrorIs(t, err, apperror.ErrNotFound)
	})
}

func TestUpdateOwned_SinglePredicate(t *testing.T) {
	db, mock := newMockDB(t)

	// One statement scoped by both id and owner; no preceding SELECT.
	mock.ExpectQuery(`(?s)UPDATE\s+submissions\s+SET.+WHERE\s+id\s*=\s*\?\s+AND\s+user_id\s*=\s*\?\s+RETURNING`).
		WithArgs("NewCo-name", "", "", nil, sqlmock.AnyArg(), "s1", "u2").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "company", "country", "questions", "user_id", "created_at", "updated_at"}))

	_, err := db.UpdateOwned(context.Background(), "s1", "u2", model.SubmissionPatch{Name: "NewCo-name"})
	require.ErrorIs(t, err, apperror.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteOwned_SinglePredicate(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`DELETE\s+FROM\s+submissions\s+WHERE\s+id\s*=\s*\?\s+AND\s+user_id\s*=\s*\?\s+RETURNING`).
		WithArgs("s1", "u1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "company", "country", "questions", "user_id", "created_at", "updated_at"}).
			AddRow("s1", "Ann", "Acme", "US", `["Q1"]`, "u1", int64(1), int64(2)))

	got, err := db.DeleteOwned(context.Background(), "s1", "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Q1"}, got.Questions)
	assert.Equal(t, int64(2), got.UpdatedAt.UnixNano())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScanSubmission_CorruptQuestions(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`(?s)SELECT\s+.+\s+WHERE\s+user_id`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "company", "country", "questions", "user_id", "created_at", "updated_at"}).
			AddRow("s1", "Ann", "Acme", "US", `not json`, "u1", int64(1), int64(1)))

	_, err := db.ListByOwner(context.Background(), "u1")
	require.Error(t, err)
}

package data

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(db), mock
}

func TestProfile(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(`SELECT id, nickname, level\s+FROM users\s+WHERE id = \$1`).
		WithArgs("u_1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "nickname", "level"}).AddRow("u_1", "Alice", 3))

	p, err := s.Profile(context.Background(), "u_1")
	require.NoError(t, err)
	assert.Equal(t, Profile{ID: "u_1", Nickname: "Alice", Level: 3}, p)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileNotFound(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(`FROM users`).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id", "nickname", "level"}))

	_, err := s.Profile(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileQueryError(t *testing.T) {
	s, mock := newMockStore(t)
	boom := errors.New("connection reset")
	mock.ExpectQuery(`FROM users`).WithArgs("u_2").WillReturnError(boom)

	_, err := s.Profile(context.Background(), "u_2")
	require.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "u_2")
}

func TestMarkSeen(t *testing.T) {
	cases := map[string]string{
		"online":  "online",
		"offline": "offline",
		"away":    "away",
		"busy":    "online",
		"":        "online",
	}
	for in, want := range cases {
		t.Run("status "+in, func(t *testing.T) {
			s, mock := newMockStore(t)
			mock.ExpectExec(`UPDATE users\s+SET status = \$1`).
				WithArgs(want, sqlmock.AnyArg(), "u_1").
				WillReturnResult(sqlmock.NewResult(0, 1))

			require.NoError(t, s.MarkSeen(context.Background(), "u_1", in))
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dupErr(key string) *mysql.MySQLError {
	return &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'x' for key '" + key + "'"}
}

func TestCreateUserMapsDuplicateKeys(t *testing.T) {
	cases := []struct {
		key  string
		want error
	}{
		{"uq_users_username", ErrUsernameExists},
		{"uq_users_email", ErrEmailExists},
	}
	for _, tc := range cases {
		t.Run(tc.key, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			mock.ExpectExec("INSERT INTO users").
				WillReturnError(dupErr(tc.key))

			_, err = NewUserRepo(db).Create(context.Background(), "alice", "a@example.com", "pass", nil, 4)
			assert.ErrorIs(t, err, tc.want)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCreateUserNormalizesAndHashes(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO users").
		WithArgs("alice", "alice@example.com", sqlmock.AnyArg(), "user", nil).
		WillReturnResult(sqlmock.NewResult(7, 1))

	id, err := NewUserRepo(db).Create(context.Background(), " alice ", " Alice@Example.COM ", "pass", nil, 4)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByUsernameOrEmailFallsBackToUsername(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	cols := []string{"id", "username", "email", "password_hash", "role",
		"phone", "is_active", "created_at", "updated_at", "last_login"}
	now := time.Now()

	// no email match for the case-folded identifier
	mock.ExpectQuery("SELECT .+ FROM users WHERE email=?").
		WithArgs("bob").
		WillReturnRows(sqlmock.NewRows(cols))
	// then the username lookup hits
	mock.ExpectQuery("SELECT .+ FROM users WHERE username=?").
		WithArgs("bob").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(3, "bob", "bob@example.com", "hash", "user", nil, true, now, now, nil))

	u, err := NewUserRepo(db).FindByUsernameOrEmail(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, uint64(3), u.ID)
	assert.Equal(t, "bob", u.Username)
	assert.Nil(t, u.Phone)
	assert.Nil(t, u.LastLogin)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateProfileMapsDuplicateEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("UPDATE users SET username=").
		WillReturnError(dupErr("uq_users_email"))

	err = NewUserRepo(db).UpdateProfile(context.Background(), 3, "bob", "taken@example.com", nil)
	assert.ErrorIs(t, err, ErrEmailExists)
	require.NoError(t, mock.ExpectationsWereMet())
}

package controllers

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	sqldriver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setTestEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("DATABASE_URI", "root:root@tcp(127.0.0.1:3306)/test")
}

// newMockDB opens gorm over a sqlmock connection so controller store paths
// can be driven without a running MySQL. TranslateError matches the real
// connection setup: duplicate-key failures must surface as
// gorm.ErrDuplicatedKey for the race-handling branches to fire.
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 logger.Discard,
	})
	require.NoError(t, err)
	return db, mock
}

func duplicateEntryErr() error {
	return &sqldriver.MySQLError{Number: 1062, Message: "Duplicate entry"}
}

var profileColumns = []string{
	"id", "user_id", "points_balance", "current_streak",
	"longest_streak", "last_check_in", "created_at", "updated_at",
}

func TestGetOrCreateProfileReturnsExistingRow(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("SELECT (.+) FROM .profiles. WHERE user_id(.+)FOR UPDATE").
		WillReturnRows(sqlmock.NewRows(profileColumns).
			AddRow(1, 7, 120, 3, 9, nil, time.Now(), time.Now()))

	profile, err := getOrCreateProfile(db, 7)
	require.NoError(t, err)
	assert.Equal(t, uint(7), profile.UserID)
	assert.Equal(t, 120, profile.PointsBalance)
	assert.Equal(t, 3, profile.CurrentStreak)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrCreateProfileBootstrapsZeroProfile(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("SELECT (.+) FROM .profiles. WHERE user_id(.+)FOR UPDATE").
		WillReturnRows(sqlmock.NewRows(profileColumns))
	mock.ExpectExec("INSERT INTO .profiles.").
		WillReturnResult(sqlmock.NewResult(1, 1))

	profile, err := getOrCreateProfile(db, 7)
	require.NoError(t, err)
	assert.Equal(t, uint(7), profile.UserID)
	assert.Equal(t, 0, profile.PointsBalance)
	assert.Nil(t, profile.LastCheckIn)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Two sessions bootstrapping the same profile race on the user_id unique
// index; the loser's insert hits a duplicate key and must fall back to the
// winner's row instead of failing the request.
func TestGetOrCreateProfileLosesBootstrapRace(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("SELECT (.+) FROM .profiles. WHERE user_id(.+)FOR UPDATE").
		WillReturnRows(sqlmock.NewRows(profileColumns))
	mock.ExpectExec("INSERT INTO .profiles.").
		WillReturnError(duplicateEntryErr())
	mock.ExpectQuery("SELECT (.+) FROM .profiles. WHERE user_id(.+)FOR UPDATE").
		WillReturnRows(sqlmock.NewRows(profileColumns).
			AddRow(4, 7, 40, 1, 1, nil, time.Now(), time.Now()))

	profile, err := getOrCreateProfile(db, 7)
	require.NoError(t, err)
	assert.Equal(t, uint(7), profile.UserID)
	assert.Equal(t, 40, profile.PointsBalance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowvahub/rewards/middleware"
)

var referralColumns = []string{
	"id", "referrer_id", "referee_id", "status",
	"points_earned", "completed_at", "created_at", "updated_at",
}

// The session that loses the race on the (user_id, check_in_date) unique
// index must see the same rejection as a plain repeat check-in, and the
// transaction must roll back so the loser's profile update never lands.
func TestDailyCheckInConcurrentLoserSeesAlreadyCheckedIn(t *testing.T) {
	setTestEnv(t)
	gin.SetMode(gin.TestMode)

	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM .profiles. WHERE user_id(.+)FOR UPDATE").
		WillReturnRows(sqlmock.NewRows(profileColumns).
			AddRow(1, 7, 0, 0, 0, nil, time.Now(), time.Now()))
	mock.ExpectExec("INSERT INTO .check_ins.").
		WillReturnError(duplicateEntryErr())
	mock.ExpectRollback()

	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)
	ctx.Request = httptest.NewRequest(http.MethodPost, "/api/v1/checkins", nil)
	ctx.Set(middleware.ContextUserIDKey, uint(7))

	NewCheckInController(db).DailyCheckIn(ctx)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "40030")
	assert.Contains(t, w.Body.String(), "already checked in today")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCompletePendingReferralNoPendingRow(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("SELECT (.+) FROM .referrals. WHERE referee_id(.+)FOR UPDATE").
		WillReturnRows(sqlmock.NewRows(referralColumns))

	require.NoError(t, completePendingReferral(db, 7))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Completing a referral marks the row and credits the referrer with a single
// increment statement; no second profile row is read under lock.
func TestCompletePendingReferralCreditsReferrer(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("SELECT (.+) FROM .referrals. WHERE referee_id(.+)FOR UPDATE").
		WillReturnRows(sqlmock.NewRows(referralColumns).
			AddRow(3, 2, 7, "pending", 50, nil, time.Now(), time.Now()))
	mock.ExpectExec("UPDATE .referrals. SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE .profiles. SET .points_balance.=points_balance").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, completePendingReferral(db, 7))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreditReferrerBootstrapsMissingProfile(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec("UPDATE .profiles. SET .points_balance.=points_balance").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO .profiles.").
		WillReturnResult(sqlmock.NewResult(5, 1))

	require.NoError(t, creditReferrer(db, 2, 50))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreditReferrerRetriesAfterConcurrentBootstrap(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec("UPDATE .profiles. SET .points_balance.=points_balance").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO .profiles.").
		WillReturnError(duplicateEntryErr())
	mock.ExpectExec("UPDATE .profiles. SET .points_balance.=points_balance").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, creditReferrer(db, 2, 50))
	assert.NoError(t, mock.ExpectationsWereMet())
}

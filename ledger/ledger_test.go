package ledger

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func datePtr(s string) *time.Time {
	t := date(s)
	return &t
}

func TestEvaluateCheckInFirstEver(t *testing.T) {
	p := ProfileState{PointsBalance: 0, CurrentStreak: 0, LongestStreak: 0}

	res, err := EvaluateCheckIn(p, date("2024-01-10"), 5)
	require.NoError(t, err)

	assert.Equal(t, 5, res.PointsBalance)
	assert.Equal(t, 1, res.CurrentStreak)
	assert.Equal(t, 1, res.LongestStreak)
	assert.True(t, res.LastCheckIn.Equal(date("2024-01-10")))
	assert.Equal(t, 5, res.PointsEarned)
}

func TestEvaluateCheckInConsecutiveDayExtendsStreak(t *testing.T) {
	p := ProfileState{
		PointsBalance: 5,
		CurrentStreak: 1,
		LongestStreak: 1,
		LastCheckIn:   datePtr("2024-01-10"),
	}

	res, err := EvaluateCheckIn(p, date("2024-01-11"), 5)
	require.NoError(t, err)

	assert.Equal(t, 10, res.PointsBalance)
	assert.Equal(t, 2, res.CurrentStreak)
	assert.Equal(t, 2, res.LongestStreak)
	assert.True(t, res.LastCheckIn.Equal(date("2024-01-11")))
}

func TestEvaluateCheckInGapResetsStreak(t *testing.T) {
	p := ProfileState{
		PointsBalance: 10,
		CurrentStreak: 2,
		LongestStreak: 2,
		LastCheckIn:   datePtr("2024-01-11"),
	}

	res, err := EvaluateCheckIn(p, date("2024-01-13"), 5)
	require.NoError(t, err)

	assert.Equal(t, 15, res.PointsBalance)
	assert.Equal(t, 1, res.CurrentStreak)
	assert.Equal(t, 2, res.LongestStreak, "longest streak must survive the reset")
}

func TestEvaluateCheckInSameDayRejected(t *testing.T) {
	p := ProfileState{
		PointsBalance: 25,
		CurrentStreak: 3,
		LongestStreak: 4,
		LastCheckIn:   datePtr("2024-01-10"),
	}

	// Repeating the attempt any number of times never yields a result.
	for i := 0; i < 3; i++ {
		_, err := EvaluateCheckIn(p, date("2024-01-10"), 5)
		assert.ErrorIs(t, err, ErrAlreadyCheckedIn)
	}
}

func TestEvaluateCheckInSameDayIgnoresTimeOfDay(t *testing.T) {
	morning := time.Date(2024, 1, 10, 8, 30, 0, 0, time.UTC)
	evening := time.Date(2024, 1, 10, 23, 59, 59, 0, time.UTC)
	p := ProfileState{LastCheckIn: &morning}

	_, err := EvaluateCheckIn(p, evening, 5)
	assert.ErrorIs(t, err, ErrAlreadyCheckedIn)
}

func TestEvaluateCheckInLongestStreakNeverDecreases(t *testing.T) {
	p := ProfileState{CurrentStreak: 1, LongestStreak: 9, LastCheckIn: datePtr("2024-03-01")}

	day := date("2024-03-02")
	for i := 0; i < 12; i++ {
		res, err := EvaluateCheckIn(p, day, 5)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, res.LongestStreak, p.LongestStreak)
		assert.GreaterOrEqual(t, res.LongestStreak, res.CurrentStreak)

		last := res.LastCheckIn
		p = ProfileState{
			PointsBalance: res.PointsBalance,
			CurrentStreak: res.CurrentStreak,
			LongestStreak: res.LongestStreak,
			LastCheckIn:   &last,
		}
		day = day.AddDate(0, 0, 1)
	}
	// 12 consecutive days on top of streak 1 overtakes the recorded 9.
	assert.Equal(t, 13, p.CurrentStreak)
	assert.Equal(t, 13, p.LongestStreak)
}

func TestEvaluateCheckInMonthBoundary(t *testing.T) {
	p := ProfileState{CurrentStreak: 5, LongestStreak: 5, LastCheckIn: datePtr("2024-01-31")}

	res, err := EvaluateCheckIn(p, date("2024-02-01"), 5)
	require.NoError(t, err)
	assert.Equal(t, 6, res.CurrentStreak)
}

func TestEvaluateRedemption(t *testing.T) {
	tests := []struct {
		name      string
		balance   int
		required  int
		want      int
		shortfall int
	}{
		{name: "exact balance", balance: 50, required: 50, want: 0},
		{name: "surplus", balance: 80, required: 50, want: 30},
		{name: "insufficient", balance: 40, required: 50, shortfall: 10},
		{name: "zero balance", balance: 0, required: 5, shortfall: 5},
		{name: "free reward", balance: 0, required: 0, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EvaluateRedemption(tt.balance, tt.required)
			if tt.shortfall > 0 {
				var insufficient *InsufficientPointsError
				require.True(t, errors.As(err, &insufficient))
				assert.Equal(t, tt.shortfall, insufficient.Shortfall())
				assert.Equal(t, tt.balance, got, "balance unchanged on rejection")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDateOnly(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	in := time.Date(2024, 6, 15, 23, 45, 0, 0, loc)

	got := DateOnly(in)
	assert.Equal(t, time.Date(2024, 6, 15, 0, 0, 0, 0, loc), got)
}

func TestDateOnlyKeepsWallClockDateWestOfUTC(t *testing.T) {
	// The store renders time values in the connection's timezone; the
	// normalized date must carry the same calendar date in its own zone or a
	// morning check-in west of UTC lands on the previous day.
	west := time.FixedZone("UTC-5", -5*3600)
	in := time.Date(2024, 1, 10, 10, 0, 0, 0, west)

	got := DateOnly(in)
	assert.Equal(t, "2024-01-10", got.Format("2006-01-02"))
	assert.Equal(t, west, got.Location())
}

func TestEvaluateCheckInConsecutiveDaysWestOfUTC(t *testing.T) {
	west := time.FixedZone("UTC-5", -5*3600)

	res1, err := EvaluateCheckIn(ProfileState{}, time.Date(2024, 1, 10, 10, 0, 0, 0, west), 5)
	require.NoError(t, err)
	require.Equal(t, "2024-01-10", res1.LastCheckIn.Format("2006-01-02"))

	// The persisted date reads back with the same wall-clock date; the next
	// morning's check-in must extend the streak, not reset it.
	stored := res1.LastCheckIn
	res2, err := EvaluateCheckIn(ProfileState{
		PointsBalance: res1.PointsBalance,
		CurrentStreak: res1.CurrentStreak,
		LongestStreak: res1.LongestStreak,
		LastCheckIn:   &stored,
	}, time.Date(2024, 1, 11, 9, 0, 0, 0, west), 5)
	require.NoError(t, err)
	assert.Equal(t, 2, res2.CurrentStreak)

	// And a same-day retry still collides.
	stored2 := res2.LastCheckIn
	_, err = EvaluateCheckIn(ProfileState{LastCheckIn: &stored2}, time.Date(2024, 1, 11, 22, 0, 0, 0, west), 5)
	assert.ErrorIs(t, err, ErrAlreadyCheckedIn)
}

func TestSameDay(t *testing.T) {
	assert.True(t, SameDay(date("2024-01-10"), time.Date(2024, 1, 10, 18, 0, 0, 0, time.UTC)))
	assert.False(t, SameDay(date("2024-01-10"), date("2024-01-11")))
}

// Package ledger holds the pure bookkeeping rules of the rewards program:
// how a daily check-in advances streaks and credits points, and when a
// redemption may debit the balance. Functions here never touch the store or
// the clock; callers pass in the current profile state and "today" and
// persist the results inside one transaction.
package ledger

import "time"

// DateOnly truncates t to its calendar date at midnight, keeping t's
// location. The location is preserved because the store renders time values
// in the connection's timezone; forcing UTC here would shift the stored date
// back a day for servers west of UTC. All streak arithmetic compares dates
// normalized through this function.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// ProfileState is the slice of a profile the evaluators read.
type ProfileState struct {
	PointsBalance int
	CurrentStreak int
	LongestStreak int
	LastCheckIn   *time.Time
}

// CheckInResult is the next profile state plus the record to append.
type CheckInResult struct {
	PointsBalance int
	CurrentStreak int
	LongestStreak int
	LastCheckIn   time.Time
	PointsEarned  int
}

// EvaluateCheckIn computes the outcome of checking in on today's date.
// A check-in on the same date as the last one fails with ErrAlreadyCheckedIn
// and implies no writes. A check-in the day after the last one extends the
// streak; any other gap resets it to 1. The longest streak is clamped so it
// never decreases.
func EvaluateCheckIn(p ProfileState, today time.Time, rewardPoints int) (CheckInResult, error) {
	today = DateOnly(today)

	streak := 1
	if p.LastCheckIn != nil {
		last := DateOnly(*p.LastCheckIn)
		if SameDay(last, today) {
			return CheckInResult{}, ErrAlreadyCheckedIn
		}
		if SameDay(last.AddDate(0, 0, 1), today) {
			streak = p.CurrentStreak + 1
		}
	}

	longest := p.LongestStreak
	if streak > longest {
		longest = streak
	}

	return CheckInResult{
		PointsBalance: p.PointsBalance + rewardPoints,
		CurrentStreak: streak,
		LongestStreak: longest,
		LastCheckIn:   today,
		PointsEarned:  rewardPoints,
	}, nil
}

// EvaluateRedemption returns the balance after debiting required points, or
// an InsufficientPointsError carrying the shortfall. The balance can reach
// zero but never goes negative.
func EvaluateRedemption(balance, required int) (int, error) {
	if balance < required {
		return balance, &InsufficientPointsError{Required: required, Balance: balance}
	}
	return balance - required, nil
}

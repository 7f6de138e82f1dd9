package ledger

import (
	"errors"
	"fmt"
)

// Failure kinds shared by the ledger operations. Handlers match on these
// with errors.Is/As instead of inspecting store-specific error codes.
var (
	// ErrAlreadyCheckedIn is returned when a check-in is attempted on the
	// same calendar day as the profile's last check-in.
	ErrAlreadyCheckedIn = errors.New("already checked in today")
	// ErrProfileMissing signals that no profile row exists yet for the user.
	ErrProfileMissing = errors.New("profile not found")
	// ErrRewardUnavailable is returned for redemptions of disabled rewards.
	ErrRewardUnavailable = errors.New("reward is not available")
	// ErrStoreUnavailable wraps transient store failures and timeouts.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// InsufficientPointsError rejects a redemption the balance cannot cover.
type InsufficientPointsError struct {
	Required int
	Balance  int
}

func (e *InsufficientPointsError) Error() string {
	return fmt.Sprintf("insufficient points: need %d more", e.Shortfall())
}

// Shortfall is how many points the user is missing, for display.
func (e *InsufficientPointsError) Shortfall() int {
	return e.Required - e.Balance
}

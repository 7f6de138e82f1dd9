package models

import "time"

// Profile is the per-user points ledger. At most one row exists per user; the
// unique index on UserID is what lets concurrent bootstraps race safely.
// PointsBalance never goes negative through application writes and
// LongestStreak never falls below CurrentStreak.
type Profile struct {
	ID            uint       `gorm:"primaryKey" json:"-"`
	UserID        uint       `gorm:"not null;uniqueIndex" json:"-"`
	PointsBalance int        `gorm:"not null;default:0" json:"points_balance"`
	CurrentStreak int        `gorm:"not null;default:0" json:"current_streak"`
	LongestStreak int        `gorm:"not null;default:0" json:"longest_streak"`
	LastCheckIn   *time.Time `gorm:"type:date" json:"last_check_in"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

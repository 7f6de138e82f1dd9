package models

import "time"

// Referral status values. A referral is created pending at the referee's
// sign-up and completes on their first check-in.
const (
	ReferralStatusPending   = "pending"
	ReferralStatusCompleted = "completed"
)

// Referral links a referrer to a signed-up referee. PointsEarned is the
// referrer's reward, credited when the row moves to completed.
type Referral struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	ReferrerID   uint       `gorm:"index;not null" json:"referrer_id"`
	RefereeID    uint       `gorm:"uniqueIndex;not null" json:"referee_id"`
	Status       string     `gorm:"size:16;not null;default:pending;index" json:"status"`
	PointsEarned int        `gorm:"not null" json:"points_earned"`
	CompletedAt  *time.Time `json:"completed_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Share logs one outbound share and the points it credited.
type Share struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"index;not null" json:"user_id"`
	Platform     string    `gorm:"size:32;not null" json:"platform"`
	ShareType    string    `gorm:"size:32;not null" json:"share_type"`
	PointsEarned int       `gorm:"not null" json:"points_earned"`
	CreatedAt    time.Time `json:"created_at"`
}

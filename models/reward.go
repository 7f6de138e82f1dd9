package models

import "time"

// Reward is a redeemable catalog entry. The catalog is managed outside the
// request path (seeded or edited directly in the store); handlers only read it.
type Reward struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Name           string    `gorm:"size:128;not null" json:"name"`
	Description    string    `gorm:"size:512" json:"description"`
	PointsRequired int       `gorm:"not null" json:"points_required"`
	Icon           string    `gorm:"size:64" json:"icon"`
	Available      bool      `gorm:"not null;default:true" json:"available"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Redemption is the append-only audit record of a successful reward debit.
type Redemption struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"index;not null" json:"user_id"`
	RewardID    uint      `gorm:"index;not null" json:"reward_id"`
	PointsSpent int       `gorm:"not null" json:"points_spent"`
	CreatedAt   time.Time `json:"created_at"`
}

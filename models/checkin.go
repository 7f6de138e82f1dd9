package models

import "time"

// CheckIn is an append-only record of one daily check-in. The composite
// unique index on (user_id, check_in_date) is the backstop against two
// sessions crediting the same calendar day; the losing insert surfaces as a
// duplicate-key conflict. Rows are never updated or deleted.
type CheckIn struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"not null;uniqueIndex:idx_user_checkin_date" json:"user_id"`
	CheckInDate  time.Time `gorm:"type:date;not null;uniqueIndex:idx_user_checkin_date" json:"check_in_date"`
	PointsEarned int       `gorm:"not null" json:"points_earned"`
	CreatedAt    time.Time `json:"created_at"`
}

func (CheckIn) TableName() string {
	return "check_ins"
}

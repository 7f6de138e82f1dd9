package models

import "time"

// Activity is a point-earning action shown on the earn tab.
type Activity struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:128;not null" json:"name"`
	Description string    `gorm:"size:512" json:"description"`
	Points      int       `gorm:"not null" json:"points"`
	Icon        string    `gorm:"size:64" json:"icon"`
	Category    string    `gorm:"size:64" json:"category"`
	CreatedAt   time.Time `json:"created_at"`
}

// ActivityCompletion logs each credited completion.
type ActivityCompletion struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"index;not null" json:"user_id"`
	ActivityID   uint      `gorm:"index;not null" json:"activity_id"`
	PointsEarned int       `gorm:"not null" json:"points_earned"`
	CreatedAt    time.Time `json:"created_at"`
}

package models

import "time"

// Rating is a 1-5 star score a user gives a store. A user holds at most one
// rating per store.
type Rating struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `json:"user_id" gorm:"type:varchar(36);uniqueIndex:idx_rating_user_store"`
	StoreID   string    `json:"store_id" gorm:"type:varchar(36);uniqueIndex:idx_rating_user_store;index"`
	Value     int       `json:"rating" gorm:"not null;check:value >= 1 AND value <= 5"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

package models

import "time"

// Store is a rated shop. The owner is referenced by name and email only and is
// not checked against the user table.
type Store struct {
	ID         string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name       string    `json:"name" gorm:"type:varchar(60)"`
	Email      string    `json:"email" gorm:"uniqueIndex;type:varchar(255)"`
	Address    string    `json:"address" gorm:"type:varchar(400)"`
	OwnerName  string    `json:"owner_name" gorm:"type:varchar(60)"`
	OwnerEmail string    `json:"owner_email" gorm:"type:varchar(255);index"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

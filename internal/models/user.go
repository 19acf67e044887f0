package models

import "time"

// Role is the role a user acts under. It selects the dashboard and navigation, nothing more.
type Role string

const (
	RoleUser       Role = "user"
	RoleStoreOwner Role = "store_owner"
	RoleAdmin      Role = "admin"
)

// Roles lists every known role in display order.
var Roles = []Role{RoleAdmin, RoleStoreOwner, RoleUser}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleStoreOwner, RoleAdmin:
		return true
	}
	return false
}

// User represents a registered account.
type User struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name      string    `json:"name" gorm:"type:varchar(60)"`
	Email     string    `json:"email" gorm:"uniqueIndex;type:varchar(255)"`
	Address   string    `json:"address" gorm:"type:varchar(400)"`
	Password  string    `json:"-" gorm:"type:varchar(255)"` // bcrypt hash
	Role      Role      `json:"role" gorm:"type:varchar(16);index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

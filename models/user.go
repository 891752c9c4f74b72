package models

import "time"

// User is a staff login. Password is stored as the source system stored it:
// plain text compared byte-for-byte at login. Values written with the
// versioned format (bcrypt, "$2..." prefix) are checked with bcrypt instead.
type User struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Username  string `gorm:"size:255;uniqueIndex;not null" json:"username"`
	Password  string `gorm:"size:255;not null" json:"-"`
	Name      string `gorm:"size:255" json:"name"`
	Role      string `gorm:"size:32;default:admin" json:"role"`
	Avatar    string `gorm:"size:512" json:"avatar"`
}

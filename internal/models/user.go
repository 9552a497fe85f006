package models

import (
	"time"

	"gorm.io/gorm"
)

// User is a treasure creator.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"uniqueIndex;not null" json:"username"`
	Email     string         `gorm:"uniqueIndex;not null" json:"email"`
	Password  string         `gorm:"not null" json:"-"`
	FirstName string         `json:"first_name"`
	LastName  string         `json:"last_name"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Creator is the identity stamped on a treasure. ID is the user's primary key
// rendered as a string, or a random UUID when no user could be resolved.
type Creator struct {
	ID   string
	Name string
}

package model

import (
	"time"

	"gorm.io/gorm"
)

// User is a restaurant owner. Every other entity carries the owner's id.
type User struct {
	ID        string    `json:"id" gorm:"primaryKey;size:26"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null"`
	Name      string    `json:"name"`
	Password  string    `json:"-" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = NewID()
	}
	return nil
}

package model

import (
	"time"

	"gorm.io/gorm"
)

type Menu struct {
	ID            string     `json:"id" gorm:"primaryKey;size:26"`
	Name          string     `json:"name" gorm:"not null"`
	AvailableTime string     `json:"available_time"`
	Position      int        `json:"position" gorm:"not null;default:0"`
	RestaurantID  string     `json:"restaurant_id" gorm:"index;not null"`
	UserID        string     `json:"user_id" gorm:"index;not null"`
	Categories    []Category `json:"categories,omitempty" gorm:"foreignKey:MenuID"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (m *Menu) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = NewID()
	}
	return nil
}

func (m Menu) OrderID() string    { return m.ID }
func (m Menu) OrderPosition() int { return m.Position }
func (m Menu) WithPosition(p int) Menu {
	m.Position = p
	return m
}

package model

import (
	"time"

	"gorm.io/gorm"
)

type Category struct {
	ID        string     `json:"id" gorm:"primaryKey;size:26"`
	Name      string     `json:"name" gorm:"not null"`
	Position  int        `json:"position" gorm:"not null;default:0"`
	MenuID    string     `json:"menu_id" gorm:"index;not null"`
	UserID    string     `json:"user_id" gorm:"index;not null"`
	Items     []MenuItem `json:"items,omitempty" gorm:"foreignKey:CategoryID"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = NewID()
	}
	return nil
}

func (c Category) OrderID() string    { return c.ID }
func (c Category) OrderPosition() int { return c.Position }
func (c Category) WithPosition(p int) Category {
	c.Position = p
	return c
}

package model

import (
	"time"

	"gorm.io/gorm"
)

// MenuItem keeps MenuID alongside CategoryID so item images can be filed
// under the menu folder without a join.
type MenuItem struct {
	ID          string    `json:"id" gorm:"primaryKey;size:26"`
	Name        string    `json:"name" gorm:"not null"`
	Price       string    `json:"price"`
	Description string    `json:"description"`
	Position    int       `json:"position" gorm:"not null;default:0"`
	ImageID     *string   `json:"image_id"`
	Image       *Image    `json:"image,omitempty" gorm:"foreignKey:ImageID;constraint:-"`
	CategoryID  string    `json:"category_id" gorm:"index;not null"`
	MenuID      string    `json:"menu_id" gorm:"index;not null"`
	UserID      string    `json:"user_id" gorm:"index;not null"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (i *MenuItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = NewID()
	}
	return nil
}

func (i MenuItem) OrderID() string    { return i.ID }
func (i MenuItem) OrderPosition() int { return i.Position }
func (i MenuItem) WithPosition(p int) MenuItem {
	i.Position = p
	return i
}

package model

import (
	"time"

	"gorm.io/gorm"
)

type Restaurant struct {
	ID          string    `json:"id" gorm:"primaryKey;size:26"`
	Name        string    `json:"name" gorm:"not null"`
	Location    string    `json:"location"`
	ContactNo   *string   `json:"contact_no"`
	IsPublished bool      `json:"is_published" gorm:"default:false"`
	UserID      string    `json:"user_id" gorm:"index;not null"`
	ImageID     *string   `json:"image_id"`
	Image       *Image    `json:"image,omitempty" gorm:"foreignKey:ImageID;constraint:-"`
	Banners     []Image   `json:"banners,omitempty" gorm:"foreignKey:RestaurantID;constraint:-"`
	Menus       []Menu    `json:"menus,omitempty" gorm:"foreignKey:RestaurantID"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (r *Restaurant) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = NewID()
	}
	return nil
}

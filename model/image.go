package model

import "time"

// Image mirrors a blob in object storage. ID is the storage file id, so a
// row exists exactly as long as its file does.
type Image struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	Path         string    `json:"path" gorm:"not null"`
	BlurHash     string    `json:"blur_hash"`
	Color        string    `json:"color" gorm:"size:9"`
	RestaurantID *string   `json:"restaurant_id,omitempty" gorm:"index"`
	CreatedAt    time.Time `json:"created_at"`
}

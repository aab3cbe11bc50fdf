package service

import (
	"context"
	"errors"

	"menufic/apperr"
	"menufic/model"

	"gorm.io/gorm"
)

// GetPublishedMenu is the unauthenticated read path. Unpublished
// restaurants are reported as missing.
func (s *Service) GetPublishedMenu(ctx context.Context, restaurantID string) (*model.Restaurant, error) {
	var restaurant model.Restaurant
	err := preloadTree(s.db.WithContext(ctx)).
		Where("id = ? AND is_published = ?", restaurantID, true).
		First(&restaurant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Restaurant")
	}
	if err != nil {
		return nil, apperr.Internal("Failed to fetch menu", err)
	}
	return &restaurant, nil
}

package service

import (
	"context"
	"errors"

	"menufic/apperr"
	"menufic/cascade"
	"menufic/model"

	"gorm.io/gorm"
)

type MenuInput struct {
	Name          string
	AvailableTime string
}

func (in MenuInput) validate() error {
	if in.Name == "" {
		return apperr.Validation("Menu name is required")
	}
	if len(in.Name) > 30 {
		return apperr.Validation("Menu name must be at most 30 characters")
	}
	if len(in.AvailableTime) > 20 {
		return apperr.Validation("Available time must be at most 20 characters")
	}
	return nil
}

func (s *Service) ListMenus(ctx context.Context, userID, restaurantID string) ([]model.Menu, error) {
	if _, err := findOwned[model.Restaurant](ctx, s.db, userID, restaurantID, "Restaurant"); err != nil {
		return nil, err
	}
	var menus []model.Menu
	err := s.db.WithContext(ctx).
		Where("restaurant_id = ? AND user_id = ?", restaurantID, userID).
		Order("position ASC").
		Find(&menus).Error
	if err != nil {
		return nil, apperr.Internal("Failed to retrieve menus", err)
	}
	return menus, nil
}

// CreateMenu appends a menu after the restaurant's last one.
func (s *Service) CreateMenu(ctx context.Context, userID, restaurantID string, in MenuInput) (*model.Menu, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	s.logger.DebugContext(ctx, "creating menu", "restaurant_id", restaurantID, "user_id", userID)

	menu := model.Menu{
		Name:          in.Name,
		AvailableTime: in.AvailableTime,
		RestaurantID:  restaurantID,
		UserID:        userID,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var restaurant model.Restaurant
		err := tx.Select("id").Where("id = ? AND user_id = ?", restaurantID, userID).First(&restaurant).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("Restaurant")
		}
		if err != nil {
			return err
		}
		if err := checkQuota(tx, &model.Menu{}, "restaurant_id", restaurantID,
			s.quotas.MenusPerRestaurant, "menus", "restaurant"); err != nil {
			return err
		}
		if menu.Position, err = nextPosition(tx, &model.Menu{}, "restaurant_id", restaurantID); err != nil {
			return err
		}
		return tx.Omit("Categories").Create(&menu).Error
	})
	if err != nil {
		return nil, s.wrapWriteErr(ctx, err, "Failed to create menu", "restaurant_id", restaurantID)
	}

	s.logger.InfoContext(ctx, "menu created", "menu_id", menu.ID, "position", menu.Position)
	return &menu, nil
}

func (s *Service) UpdateMenu(ctx context.Context, userID, id string, in MenuInput) (*model.Menu, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	res := s.db.WithContext(ctx).
		Model(&model.Menu{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]any{"name": in.Name, "available_time": in.AvailableTime})
	if res.Error != nil {
		return nil, apperr.Internal("Failed to update menu", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperr.NotFound("Menu")
	}
	s.logger.InfoContext(ctx, "menu updated", "menu_id", id)
	return findOwned[model.Menu](ctx, s.db, userID, id, "Menu")
}

// DeleteMenu removes the menu with its categories, items and item images.
func (s *Service) DeleteMenu(ctx context.Context, userID, id string) (*model.Menu, error) {
	load := func(ctx context.Context, userID, id string) (*model.Menu, error) {
		var menu model.Menu
		err := s.db.WithContext(ctx).
			Preload("Categories", positionOrder).
			Preload("Categories.Items", positionOrder).
			Preload("Categories.Items.Image").
			Where("id = ? AND user_id = ?", id, userID).
			First(&menu).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Menu")
		}
		if err != nil {
			return nil, apperr.Internal("Failed to fetch menu", err)
		}
		return &menu, nil
	}
	return runDelete(ctx, s, cascade.KindMenu, userID, id, load, cascade.ForMenu)
}

// wrapWriteErr keeps apperr errors raised inside a transaction and wraps
// anything else as internal.
func (s *Service) wrapWriteErr(ctx context.Context, err error, msg string, args ...any) error {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		s.logger.WarnContext(ctx, msg, append(args, "error", err)...)
		return err
	}
	s.logger.ErrorContext(ctx, msg, append(args, "error", err)...)
	return apperr.Internal(msg, err)
}

package service

import (
	"context"
	"errors"

	"menufic/apperr"
	"menufic/cascade"
	"menufic/model"
	"menufic/storage"

	"gorm.io/gorm"
)

type RestaurantInput struct {
	Name      string
	Location  string
	ContactNo *string
}

func (in RestaurantInput) validate() error {
	if in.Name == "" {
		return apperr.Validation("Restaurant name is required")
	}
	if len(in.Name) > 30 {
		return apperr.Validation("Restaurant name must be at most 30 characters")
	}
	if len(in.Location) > 75 {
		return apperr.Validation("Location must be at most 75 characters")
	}
	return nil
}

func (s *Service) ListRestaurants(ctx context.Context, userID string) ([]model.Restaurant, error) {
	var restaurants []model.Restaurant
	err := s.db.WithContext(ctx).
		Preload("Image").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&restaurants).Error
	if err != nil {
		return nil, apperr.Internal("Failed to retrieve restaurants", err)
	}
	return restaurants, nil
}

func (s *Service) GetRestaurant(ctx context.Context, userID, id string) (*model.Restaurant, error) {
	return findOwned[model.Restaurant](ctx, s.db, userID, id, "Restaurant", "Image", "Banners")
}

// CreateRestaurant stores the cover image first, then writes the image and
// restaurant rows in one transaction. The quota is counted again inside the
// transaction, next to the insert.
func (s *Service) CreateRestaurant(ctx context.Context, userID string, in RestaurantInput, img *ImageInput) (*model.Restaurant, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := checkQuota(s.db.WithContext(ctx), &model.Restaurant{}, "user_id", userID,
		s.quotas.RestaurantsPerUser, "restaurants", "user"); err != nil {
		return nil, err
	}

	restaurant := model.Restaurant{
		ID:        model.NewID(),
		Name:      in.Name,
		Location:  in.Location,
		ContactNo: in.ContactNo,
		UserID:    userID,
	}

	var image *model.Image
	if img != nil {
		var err error
		image, err = s.upload(ctx, img, storage.RestaurantCoverFolder(userID, restaurant.ID))
		if err != nil {
			return nil, err
		}
		restaurant.ImageID = &image.ID
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkQuota(tx, &model.Restaurant{}, "user_id", userID,
			s.quotas.RestaurantsPerUser, "restaurants", "user"); err != nil {
			return err
		}
		if image != nil {
			if err := tx.Create(image).Error; err != nil {
				return err
			}
		}
		return tx.Omit("Image", "Banners", "Menus").Create(&restaurant).Error
	})
	if err != nil {
		if image != nil {
			s.discardBlob(ctx, image.ID)
		}
		return nil, s.wrapWriteErr(ctx, err, "Failed to create restaurant", "user_id", userID)
	}

	restaurant.Image = image
	s.logger.InfoContext(ctx, "restaurant created", "restaurant_id", restaurant.ID, "user_id", userID)
	return &restaurant, nil
}

// UpdateRestaurant changes the details and, when img is set, swaps the
// cover image. The old file is removed only after the new rows commit.
func (s *Service) UpdateRestaurant(ctx context.Context, userID, id string, in RestaurantInput, img *ImageInput) (*model.Restaurant, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	restaurant, err := findOwned[model.Restaurant](ctx, s.db, userID, id, "Restaurant")
	if err != nil {
		return nil, err
	}

	var image *model.Image
	if img != nil {
		image, err = s.upload(ctx, img, storage.RestaurantCoverFolder(userID, id))
		if err != nil {
			return nil, err
		}
	}

	oldImageID := restaurant.ImageID
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{
			"name":       in.Name,
			"location":   in.Location,
			"contact_no": in.ContactNo,
		}
		if image != nil {
			if err := tx.Create(image).Error; err != nil {
				return err
			}
			updates["image_id"] = image.ID
		}
		if err := tx.Model(&model.Restaurant{}).Where("id = ? AND user_id = ?", id, userID).Updates(updates).Error; err != nil {
			return err
		}
		if image != nil && oldImageID != nil {
			return tx.Where("id = ?", *oldImageID).Delete(&model.Image{}).Error
		}
		return nil
	})
	if err != nil {
		if image != nil {
			s.discardBlob(ctx, image.ID)
		}
		s.logger.ErrorContext(ctx, "failed to update restaurant", "restaurant_id", id, "error", err)
		return nil, apperr.Internal("Failed to update restaurant", err)
	}
	if image != nil && oldImageID != nil {
		s.discardBlob(ctx, *oldImageID)
	}

	s.logger.InfoContext(ctx, "restaurant updated", "restaurant_id", id)
	return s.GetRestaurant(ctx, userID, id)
}

func (s *Service) SetRestaurantPublished(ctx context.Context, userID, id string, published bool) (*model.Restaurant, error) {
	res := s.db.WithContext(ctx).
		Model(&model.Restaurant{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_published", published)
	if res.Error != nil {
		return nil, apperr.Internal("Failed to update restaurant", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperr.NotFound("Restaurant")
	}
	s.logger.InfoContext(ctx, "restaurant publication changed", "restaurant_id", id, "published", published)
	return s.GetRestaurant(ctx, userID, id)
}

// DeleteRestaurant removes the restaurant with all menus, categories, items
// and images, returning the restaurant as it was before the delete.
func (s *Service) DeleteRestaurant(ctx context.Context, userID, id string) (*model.Restaurant, error) {
	return runDelete(ctx, s, cascade.KindRestaurant, userID, id, s.loadRestaurantTree, cascade.ForRestaurant)
}

func (s *Service) loadRestaurantTree(ctx context.Context, userID, id string) (*model.Restaurant, error) {
	var restaurant model.Restaurant
	err := preloadTree(s.db.WithContext(ctx)).Where("id = ? AND user_id = ?", id, userID).First(&restaurant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Restaurant")
	}
	if err != nil {
		return nil, apperr.Internal("Failed to fetch restaurant", err)
	}
	return &restaurant, nil
}

// GetRestaurantTree returns the owner's restaurant with every menu,
// category and item in display order, published or not.
func (s *Service) GetRestaurantTree(ctx context.Context, userID, id string) (*model.Restaurant, error) {
	return s.loadRestaurantTree(ctx, userID, id)
}

// preloadTree eagerly loads a restaurant's full menu tree, each level
// sorted by position.
func preloadTree(q *gorm.DB) *gorm.DB {
	return q.
		Preload("Image").
		Preload("Banners", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Menus", positionOrder).
		Preload("Menus.Categories", positionOrder).
		Preload("Menus.Categories.Items", positionOrder).
		Preload("Menus.Categories.Items.Image")
}

func (s *Service) AddBanner(ctx context.Context, userID, restaurantID string, img *ImageInput) (*model.Image, error) {
	if img == nil {
		return nil, apperr.Validation("Banner image is required")
	}
	if _, err := findOwned[model.Restaurant](ctx, s.db, userID, restaurantID, "Restaurant"); err != nil {
		return nil, err
	}
	if err := checkQuota(s.db.WithContext(ctx), &model.Image{}, "restaurant_id", restaurantID,
		s.quotas.BannersPerRestaurant, "banners", "restaurant"); err != nil {
		return nil, err
	}

	image, err := s.upload(ctx, img, storage.RestaurantBannerFolder(userID, restaurantID))
	if err != nil {
		return nil, err
	}
	image.RestaurantID = &restaurantID
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkQuota(tx, &model.Image{}, "restaurant_id", restaurantID,
			s.quotas.BannersPerRestaurant, "banners", "restaurant"); err != nil {
			return err
		}
		return tx.Create(image).Error
	})
	if err != nil {
		s.discardBlob(ctx, image.ID)
		return nil, s.wrapWriteErr(ctx, err, "Failed to add banner", "restaurant_id", restaurantID)
	}
	s.logger.InfoContext(ctx, "banner added", "restaurant_id", restaurantID, "image_id", image.ID)
	return image, nil
}

func (s *Service) DeleteBanner(ctx context.Context, userID, restaurantID, imageID string) (*model.Image, error) {
	if _, err := findOwned[model.Restaurant](ctx, s.db, userID, restaurantID, "Restaurant"); err != nil {
		return nil, err
	}
	var banner model.Image
	err := s.db.WithContext(ctx).Where("id = ? AND restaurant_id = ?", imageID, restaurantID).First(&banner).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Banner")
	}
	if err != nil {
		return nil, apperr.Internal("Failed to fetch banner", err)
	}
	if err := s.db.WithContext(ctx).Where("id = ?", imageID).Delete(&model.Image{}).Error; err != nil {
		return nil, apperr.Internal("Failed to delete banner", err)
	}
	s.discardBlob(ctx, imageID)
	s.logger.InfoContext(ctx, "banner deleted", "restaurant_id", restaurantID, "image_id", imageID)
	return &banner, nil
}

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

type ItemInput struct {
	Name        string
	Price       string
	Description string
}

func (in ItemInput) validate() error {
	if in.Name == "" {
		return apperr.Validation("Item name is required")
	}
	if len(in.Name) > 50 {
		return apperr.Validation("Item name must be at most 50 characters")
	}
	if len(in.Price) > 12 {
		return apperr.Validation("Price must be at most 12 characters")
	}
	if len(in.Description) > 500 {
		return apperr.Validation("Description must be at most 500 characters")
	}
	return nil
}

func (s *Service) ListItems(ctx context.Context, userID, categoryID string) ([]model.MenuItem, error) {
	if _, err := findOwned[model.Category](ctx, s.db, userID, categoryID, "Category"); err != nil {
		return nil, err
	}
	var items []model.MenuItem
	err := s.db.WithContext(ctx).
		Preload("Image").
		Where("category_id = ? AND user_id = ?", categoryID, userID).
		Order("position ASC").
		Find(&items).Error
	if err != nil {
		return nil, apperr.Internal("Failed to retrieve items", err)
	}
	return items, nil
}

// CreateItem appends an item to the category. When img is set the file is
// stored before the rows are written and removed again if the write fails.
func (s *Service) CreateItem(ctx context.Context, userID, categoryID string, in ItemInput, img *ImageInput) (*model.MenuItem, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	category, err := findOwned[model.Category](ctx, s.db, userID, categoryID, "Category")
	if err != nil {
		return nil, err
	}
	if err := checkQuota(s.db.WithContext(ctx), &model.MenuItem{}, "category_id", categoryID,
		s.quotas.ItemsPerCategory, "items", "category"); err != nil {
		return nil, err
	}

	var image *model.Image
	if img != nil {
		if image, err = s.upload(ctx, img, storage.MenuItemFolder(userID, category.MenuID)); err != nil {
			return nil, err
		}
	}

	item := model.MenuItem{
		Name:        in.Name,
		Price:       in.Price,
		Description: in.Description,
		CategoryID:  categoryID,
		MenuID:      category.MenuID,
		UserID:      userID,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkQuota(tx, &model.MenuItem{}, "category_id", categoryID,
			s.quotas.ItemsPerCategory, "items", "category"); err != nil {
			return err
		}
		var err error
		if item.Position, err = nextPosition(tx, &model.MenuItem{}, "category_id", categoryID); err != nil {
			return err
		}
		if image != nil {
			if err := tx.Create(image).Error; err != nil {
				return err
			}
			item.ImageID = &image.ID
		}
		return tx.Omit("Image").Create(&item).Error
	})
	if err != nil {
		if image != nil {
			s.discardBlob(ctx, image.ID)
		}
		return nil, s.wrapWriteErr(ctx, err, "Failed to create item", "category_id", categoryID)
	}

	item.Image = image
	s.logger.InfoContext(ctx, "item created", "item_id", item.ID, "position", item.Position)
	return &item, nil
}

// UpdateItem changes the item's details and, when img is set, replaces its
// image. The previous file is deleted after the swap commits.
func (s *Service) UpdateItem(ctx context.Context, userID, id string, in ItemInput, img *ImageInput) (*model.MenuItem, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	item, err := findOwned[model.MenuItem](ctx, s.db, userID, id, "Menu item")
	if err != nil {
		return nil, err
	}

	var image *model.Image
	if img != nil {
		if image, err = s.upload(ctx, img, storage.MenuItemFolder(userID, item.MenuID)); err != nil {
			return nil, err
		}
	}

	oldImageID := item.ImageID
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{
			"name":        in.Name,
			"price":       in.Price,
			"description": in.Description,
		}
		if image != nil {
			if err := tx.Create(image).Error; err != nil {
				return err
			}
			updates["image_id"] = image.ID
		}
		if err := tx.Model(&model.MenuItem{}).Where("id = ? AND user_id = ?", id, userID).Updates(updates).Error; err != nil {
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
		return nil, s.wrapWriteErr(ctx, err, "Failed to update item", "item_id", id)
	}
	if image != nil && oldImageID != nil {
		s.discardBlob(ctx, *oldImageID)
	}

	s.logger.InfoContext(ctx, "item updated", "item_id", id)
	return findOwned[model.MenuItem](ctx, s.db, userID, id, "Menu item", "Image")
}

// DeleteItem removes one item and its image.
func (s *Service) DeleteItem(ctx context.Context, userID, id string) (*model.MenuItem, error) {
	load := func(ctx context.Context, userID, id string) (*model.MenuItem, error) {
		var item model.MenuItem
		err := s.db.WithContext(ctx).Preload("Image").Where("id = ? AND user_id = ?", id, userID).First(&item).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Menu item")
		}
		if err != nil {
			return nil, apperr.Internal("Failed to fetch menu item", err)
		}
		return &item, nil
	}
	return runDelete(ctx, s, cascade.KindMenuItem, userID, id, load, cascade.ForMenuItem)
}

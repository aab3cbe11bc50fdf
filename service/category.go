package service

import (
	"context"
	"errors"

	"menufic/apperr"
	"menufic/cascade"
	"menufic/model"

	"gorm.io/gorm"
)

type CategoryInput struct {
	Name string
}

func (in CategoryInput) validate() error {
	if in.Name == "" {
		return apperr.Validation("Category name is required")
	}
	if len(in.Name) > 30 {
		return apperr.Validation("Category name must be at most 30 characters")
	}
	return nil
}

func (s *Service) ListCategories(ctx context.Context, userID, menuID string) ([]model.Category, error) {
	if _, err := findOwned[model.Menu](ctx, s.db, userID, menuID, "Menu"); err != nil {
		return nil, err
	}
	var categories []model.Category
	err := s.db.WithContext(ctx).
		Preload("Items", positionOrder).
		Preload("Items.Image").
		Where("menu_id = ? AND user_id = ?", menuID, userID).
		Order("position ASC").
		Find(&categories).Error
	if err != nil {
		return nil, apperr.Internal("Failed to retrieve categories", err)
	}
	return categories, nil
}

func (s *Service) CreateCategory(ctx context.Context, userID, menuID string, in CategoryInput) (*model.Category, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	category := model.Category{Name: in.Name, MenuID: menuID, UserID: userID}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var menu model.Menu
		err := tx.Select("id").Where("id = ? AND user_id = ?", menuID, userID).First(&menu).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("Menu")
		}
		if err != nil {
			return err
		}
		if err := checkQuota(tx, &model.Category{}, "menu_id", menuID,
			s.quotas.CategoriesPerMenu, "categories", "menu"); err != nil {
			return err
		}
		if category.Position, err = nextPosition(tx, &model.Category{}, "menu_id", menuID); err != nil {
			return err
		}
		return tx.Omit("Items").Create(&category).Error
	})
	if err != nil {
		return nil, s.wrapWriteErr(ctx, err, "Failed to create category", "menu_id", menuID)
	}

	s.logger.InfoContext(ctx, "category created", "category_id", category.ID, "position", category.Position)
	return &category, nil
}

func (s *Service) UpdateCategory(ctx context.Context, userID, id string, in CategoryInput) (*model.Category, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	res := s.db.WithContext(ctx).
		Model(&model.Category{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("name", in.Name)
	if res.Error != nil {
		return nil, apperr.Internal("Failed to update category", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperr.NotFound("Category")
	}
	s.logger.InfoContext(ctx, "category updated", "category_id", id)
	return findOwned[model.Category](ctx, s.db, userID, id, "Category")
}

// DeleteCategory removes the category with its items and their images.
func (s *Service) DeleteCategory(ctx context.Context, userID, id string) (*model.Category, error) {
	load := func(ctx context.Context, userID, id string) (*model.Category, error) {
		var category model.Category
		err := s.db.WithContext(ctx).
			Preload("Items", positionOrder).
			Preload("Items.Image").
			Where("id = ? AND user_id = ?", id, userID).
			First(&category).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Category")
		}
		if err != nil {
			return nil, apperr.Internal("Failed to fetch category", err)
		}
		return &category, nil
	}
	return runDelete(ctx, s, cascade.KindCategory, userID, id, load, cascade.ForCategory)
}

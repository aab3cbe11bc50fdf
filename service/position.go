package service

import (
	"context"
	"fmt"

	"menufic/apperr"
	"menufic/model"
	"menufic/reorder"

	"gorm.io/gorm"
)

func (s *Service) UpdateMenuPositions(ctx context.Context, userID string, updates []reorder.PositionUpdate) ([]model.Menu, error) {
	return updatePositions[model.Menu](ctx, s, userID, "menus", "restaurant_id", updates)
}

func (s *Service) UpdateCategoryPositions(ctx context.Context, userID string, updates []reorder.PositionUpdate) ([]model.Category, error) {
	return updatePositions[model.Category](ctx, s, userID, "categories", "menu_id", updates)
}

func (s *Service) UpdateItemPositions(ctx context.Context, userID string, updates []reorder.PositionUpdate) ([]model.MenuItem, error) {
	return updatePositions[model.MenuItem](ctx, s, userID, "items", "category_id", updates, "Image")
}

// updatePositions writes every position in one transaction. Rows that do
// not exist for the owner are skipped. The batch is rolled back on any
// database error, or when it leaves two siblings under one parent on the
// same position. The updated rows are returned in their new order.
func updatePositions[T any](ctx context.Context, s *Service, userID, kind, parent string, updates []reorder.PositionUpdate, preloads ...string) ([]T, error) {
	if err := reorder.ValidateBatch(updates); err != nil {
		return nil, apperr.Validation("%v", err)
	}
	log := s.logger.With("kind", kind, "user_id", userID)
	log.DebugContext(ctx, "updating positions", "count", len(updates))

	var out []T
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := make([]string, 0, len(updates))
		for _, u := range updates {
			res := tx.Model(new(T)).
				Where("id = ? AND user_id = ?", u.ID, userID).
				Update("position", u.NewPosition)
			if res.Error != nil {
				return fmt.Errorf("update %s: %w", u.ID, res.Error)
			}
			if res.RowsAffected == 0 {
				log.DebugContext(ctx, "skipping unknown id in position batch", "id", u.ID)
				continue
			}
			ids = append(ids, u.ID)
		}
		if len(ids) == 0 {
			return nil
		}
		if err := checkUniquePositions[T](tx, parent, ids); err != nil {
			return err
		}
		q := tx
		for _, p := range preloads {
			q = q.Preload(p)
		}
		return q.Where("id IN ? AND user_id = ?", ids, userID).Order("position ASC").Find(&out).Error
	})
	if err != nil {
		return nil, s.wrapWriteErr(ctx, err, fmt.Sprintf("Failed to update %s positions", kind), "kind", kind, "user_id", userID)
	}

	log.InfoContext(ctx, "positions updated", "updated", len(out), "requested", len(updates))
	if out == nil {
		out = []T{}
	}
	return out, nil
}

type positionClash struct {
	Scope    string
	Position int
}

// checkUniquePositions fails when any parent scope touched by ids holds two
// rows on the same position.
func checkUniquePositions[T any](tx *gorm.DB, parent string, ids []string) error {
	scopes := tx.Model(new(T)).Select(parent).Where("id IN ?", ids)
	var clashes []positionClash
	err := tx.Model(new(T)).
		Select(parent+" AS scope, position").
		Where(parent+" IN (?)", scopes).
		Group(parent + ", position").
		Having("COUNT(*) > 1").
		Order("position ASC").
		Scan(&clashes).Error
	if err != nil {
		return fmt.Errorf("check positions: %w", err)
	}
	if len(clashes) > 0 {
		return apperr.Validation("Position %d is already taken in %s", clashes[0].Position, clashes[0].Scope)
	}
	return nil
}

// Package service implements the owner-scoped operations behind the HTTP
// API. Every query filters by the caller's user id, so an entity owned by
// someone else is indistinguishable from a missing one.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"menufic/apperr"
	"menufic/cascade"
	"menufic/config"
	"menufic/model"
	"menufic/storage"

	"gorm.io/gorm"
)

type Service struct {
	db        *gorm.DB
	store     storage.ObjectStore
	deleter   *cascade.Executor
	quotas    config.Quotas
	maxUpload int64
	logger    *slog.Logger
}

type Options struct {
	Quotas         config.Quotas
	MaxUploadBytes int64
}

func New(db *gorm.DB, store storage.ObjectStore, logger *slog.Logger, opts Options) *Service {
	logger = logger.With("component", "service")
	return &Service{
		db:        db,
		store:     store,
		deleter:   cascade.NewExecutor(db, store, logger),
		quotas:    opts.Quotas,
		maxUpload: opts.MaxUploadBytes,
		logger:    logger,
	}
}

// ImageInput is an uploaded image with the placeholder data computed by
// the client.
type ImageInput struct {
	Data     []byte
	Ext      string
	BlurHash string
	Color    string
}

// findOwned loads the row of type T with id owned by userID.
func findOwned[T any](ctx context.Context, db *gorm.DB, userID, id, name string, preloads ...string) (*T, error) {
	q := db.WithContext(ctx)
	for _, p := range preloads {
		q = q.Preload(p)
	}
	var out T
	err := q.Where("id = ? AND user_id = ?", id, userID).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound(name)
	}
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("Failed to fetch %s", name), err)
	}
	return &out, nil
}

// checkQuota fails when the parent scope already holds limit rows.
func checkQuota(tx *gorm.DB, m any, column, parentID string, limit int, entity, parent string) error {
	var n int64
	if err := tx.Model(m).Where(column+" = ?", parentID).Count(&n).Error; err != nil {
		return apperr.Internal("Failed to check limits", err)
	}
	if n >= int64(limit) {
		return apperr.Quota(limit, entity, parent)
	}
	return nil
}

// nextPosition returns one past the highest position in the parent scope,
// or 0 for an empty scope.
func nextPosition(tx *gorm.DB, m any, column, parentID string) (int, error) {
	var last int
	row := tx.Model(m).Where(column+" = ?", parentID).Select("COALESCE(MAX(position), -1)").Row()
	if err := row.Scan(&last); err != nil {
		return 0, apperr.Internal("Failed to compute position", err)
	}
	return last + 1, nil
}

// upload validates and stores an image before any database write. The
// returned row has not been saved.
func (s *Service) upload(ctx context.Context, in *ImageInput, folder string) (*model.Image, error) {
	ext, err := storage.ValidateImage(int64(len(in.Data)), s.maxUpload, in.Ext)
	if err != nil {
		return nil, apperr.Validation("Invalid image: %v", err)
	}
	res, err := s.store.Upload(ctx, in.Data, folder, ext)
	if err != nil {
		s.logger.ErrorContext(ctx, "image upload failed", "folder", folder, "error", err)
		return nil, apperr.Internal("Failed to upload image", err)
	}
	return &model.Image{ID: res.FileID, Path: res.FilePath, BlurHash: in.BlurHash, Color: in.Color}, nil
}

// discardBlob removes a stored file whose row was never written or has
// just been replaced. Failures leave an orphan and are only logged.
func (s *Service) discardBlob(ctx context.Context, fileID string) {
	if err := s.store.Delete(ctx, fileID); err != nil {
		s.logger.WarnContext(ctx, "failed to delete image file", "file_id", fileID, "error", err)
	}
}

// runDelete drives a cascading delete and returns the collected entity.
func runDelete[T any](ctx context.Context, s *Service, kind cascade.Kind, userID, id string, load func(context.Context, string, string) (*T, error), plan func(*T) cascade.Plan) (*T, error) {
	var target *T
	_, err := s.deleter.Run(ctx, cascade.Request{Kind: kind, ID: id, OwnerID: userID},
		func(ctx context.Context, req cascade.Request) (cascade.Plan, error) {
			t, err := load(ctx, req.OwnerID, req.ID)
			if err != nil {
				return cascade.Plan{}, err
			}
			target = t
			return plan(t), nil
		})
	if err != nil {
		return nil, err
	}
	return target, nil
}

func positionOrder(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// DiskStore keeps blobs on the local filesystem under Dir and serves them
// from BaseURL.
type DiskStore struct {
	Dir     string
	BaseURL string
}

func NewDiskStore(dir, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &DiskStore{Dir: dir, BaseURL: baseURL}, nil
}

func (s *DiskStore) Upload(ctx context.Context, data []byte, folder, ext string) (UploadResult, error) {
	if err := ctx.Err(); err != nil {
		return UploadResult{}, err
	}
	key, err := newKey(folder, ext)
	if err != nil {
		return UploadResult{}, err
	}
	full := filepath.Join(s.Dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return UploadResult{}, fmt.Errorf("create folder: %w", err)
	}
	if err := os.WriteFile(full, data, 0644); err != nil {
		return UploadResult{}, fmt.Errorf("save file: %w", err)
	}
	return UploadResult{FileID: key, FilePath: s.BaseURL + "/" + key}, nil
}

func (s *DiskStore) Delete(ctx context.Context, fileID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkKey(fileID); err != nil {
		return err
	}
	err := os.Remove(filepath.Join(s.Dir, filepath.FromSlash(fileID)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete file %s: %w", fileID, err)
	}
	return nil
}

// BulkDelete attempts every id and reports all failures together.
func (s *DiskStore) BulkDelete(ctx context.Context, fileIDs []string) error {
	var errs []error
	for _, id := range fileIDs {
		if err := s.Delete(ctx, id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Package storage stores image blobs outside the database. File ids are
// object keys: they are issued by the store on upload and are the only
// handle needed to delete a blob later.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
)

// UploadResult identifies a stored blob.
type UploadResult struct {
	FileID   string
	FilePath string
}

// ObjectStore is the external blob store. Deleting an id that does not
// exist is not an error.
type ObjectStore interface {
	Upload(ctx context.Context, data []byte, folder, ext string) (UploadResult, error)
	Delete(ctx context.Context, fileID string) error
	BulkDelete(ctx context.Context, fileIDs []string) error
}

var (
	ErrEmptyFile       = errors.New("file is empty")
	ErrFileTooLarge    = errors.New("file exceeds size limit")
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrInvalidKey      = errors.New("invalid storage key")
)

var allowedExts = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// ValidateImage checks an upload against the size limit and the accepted
// image extensions, returning the normalised extension.
func ValidateImage(size, limit int64, ext string) (string, error) {
	if size == 0 {
		return "", ErrEmptyFile
	}
	if limit > 0 && size > limit {
		return "", fmt.Errorf("%w: %d bytes > %d", ErrFileTooLarge, size, limit)
	}
	ext = strings.ToLower(ext)
	if _, ok := allowedExts[ext]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, ext)
	}
	return ext, nil
}

func contentType(ext string) string {
	if ct, ok := allowedExts[strings.ToLower(ext)]; ok {
		return ct
	}
	return "application/octet-stream"
}

// newKey builds a fresh object key under folder.
func newKey(folder, ext string) (string, error) {
	folder = strings.Trim(path.Clean("/"+folder), "/")
	if folder == "" || folder == "." {
		return "", fmt.Errorf("%w: empty folder", ErrInvalidKey)
	}
	return folder + "/" + uuid.NewString() + strings.ToLower(ext), nil
}

// checkKey rejects keys that could escape the store root.
func checkKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || path.Clean(key) != key || strings.HasPrefix(key, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

func RestaurantCoverFolder(userID, restaurantID string) string {
	return fmt.Sprintf("user/%s/restaurant/%s/cover", userID, restaurantID)
}

func RestaurantBannerFolder(userID, restaurantID string) string {
	return fmt.Sprintf("user/%s/restaurant/%s/banners", userID, restaurantID)
}

func MenuItemFolder(userID, menuID string) string {
	return fmt.Sprintf("user/%s/restaurant/menu/%s", userID, menuID)
}

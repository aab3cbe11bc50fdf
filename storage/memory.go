package storage

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps blobs in memory. Failure hooks let tests simulate an
// unavailable backend.
type MemoryStore struct {
	mu    sync.Mutex
	files map[string][]byte
	calls []string

	UploadErr error
	DeleteErr error
	// OnUpload runs before each upload is stored.
	OnUpload func()
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{files: make(map[string][]byte)}
}

func (s *MemoryStore) Upload(ctx context.Context, data []byte, folder, ext string) (UploadResult, error) {
	if s.OnUpload != nil {
		s.OnUpload()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "upload")
	if s.UploadErr != nil {
		return UploadResult{}, s.UploadErr
	}
	key, err := newKey(folder, ext)
	if err != nil {
		return UploadResult{}, err
	}
	s.files[key] = append([]byte(nil), data...)
	return UploadResult{FileID: key, FilePath: "/mem/" + key}, nil
}

func (s *MemoryStore) Delete(ctx context.Context, fileID string) error {
	return s.BulkDelete(ctx, []string{fileID})
}

func (s *MemoryStore) BulkDelete(ctx context.Context, fileIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "delete")
	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	for _, id := range fileIDs {
		delete(s.files, id)
	}
	return nil
}

// Put stores a blob under an explicit id.
func (s *MemoryStore) Put(id string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[id] = data
}

func (s *MemoryStore) Has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.files[id]
	return ok
}

// IDs returns the stored ids in sorted order.
func (s *MemoryStore) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.files))
	for id := range s.files {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Calls returns the operations received so far ("upload" or "delete").
func (s *MemoryStore) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"sync"
	"time"

	"cityportal/models"
)

// MemoryStorage keeps objects in process memory. It backs local development
// (STORAGE_PROVIDER=memory) and tests.
type MemoryStorage struct {
	mu      sync.Mutex
	baseURL string
	objects map[string][]byte
	// FailUploads makes every Upload fail with models.ErrStorage.
	FailUploads bool
}

func NewMemoryStorage(baseURL string) *MemoryStorage {
	return &MemoryStorage{baseURL: baseURL, objects: make(map[string][]byte)}
}

func (m *MemoryStorage) Provider() string { return ProviderMemory }

func (m *MemoryStorage) Upload(ctx context.Context, in UploadInput) (models.FileRef, error) {
	if m.FailUploads {
		return models.FileRef{}, fmt.Errorf("memory upload disabled: %w", models.ErrStorage)
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return models.FileRef{}, fmt.Errorf("failed to read upload: %v: %w", err, models.ErrStorage)
	}
	key := ObjectKey(in.Bucket, in.Prefix, in.Filename)

	m.mu.Lock()
	m.objects[key] = data
	m.mu.Unlock()

	ref := models.FileRef{
		Provider:     ProviderMemory,
		Bucket:       in.Bucket,
		Key:          key,
		ContentType:  in.ContentType,
		Size:         int64(len(data)),
		OriginalName: in.Filename,
		Public:       in.Public,
	}
	if in.Public {
		ref.URL = m.baseURL + "/" + key
	}
	return ref, nil
}

func (m *MemoryStorage) Delete(ctx context.Context, ref models.FileRef) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, ref.Key)
	return nil
}

func (m *MemoryStorage) DownloadURL(ctx context.Context, ref models.FileRef, expires time.Duration) (string, error) {
	if ref.Public {
		return m.baseURL + "/" + ref.Key, nil
	}
	q := url.Values{"expires": {time.Now().Add(expires).UTC().Format(time.RFC3339)}}
	return m.baseURL + "/" + ref.Key + "?" + q.Encode(), nil
}

// Has reports whether key is stored.
func (m *MemoryStorage) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok
}

// Len returns the number of stored objects.
func (m *MemoryStorage) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStore is an in-process Store. It backs tests and local tooling.
type MemoryStore struct {
	mu      sync.RWMutex
	name    string
	objects map[string]memoryObject
	now     func() time.Time
	pingErr error
}

type memoryObject struct {
	data []byte
	info ObjectInfo
}

func NewMemoryStore(name string) *MemoryStore {
	return &MemoryStore{
		name:    name,
		objects: make(map[string]memoryObject),
		now:     time.Now,
	}
}

// SetClock replaces the clock used to stamp LastModified.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// SetPingError makes Ping fail with err (nil clears it).
func (s *MemoryStore) SetPingError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pingErr = err
}

func (s *MemoryStore) PutObject(ctx context.Context, key string, data []byte, contentType string) (int64, error) {
	_ = ctx

	s.mu.Lock()
	defer s.mu.Unlock()

	buf := append([]byte(nil), data...)
	s.objects[key] = memoryObject{
		data: buf,
		info: ObjectInfo{
			Key:          key,
			Size:         int64(len(buf)),
			LastModified: s.now().UTC(),
			ContentType:  contentType,
		},
	}
	return int64(len(buf)), nil
}

func (s *MemoryStore) GetObject(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	_ = ctx

	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.objects[key]
	if !ok {
		return nil, ObjectInfo{}, fmt.Errorf("%w: %s", ErrObjectNotFound, key)
	}
	return io.NopCloser(bytes.NewReader(obj.data)), obj.info, nil
}

func (s *MemoryStore) ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	_ = ctx

	s.mu.RLock()
	defer s.mu.RUnlock()

	objects := make([]ObjectInfo, 0, len(s.objects))
	for key, obj := range s.objects {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		if strings.Contains(strings.TrimPrefix(key, prefix), "/") {
			continue
		}
		objects = append(objects, obj.info)
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })
	return objects, nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	_ = ctx

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pingErr
}

func (s *MemoryStore) URI(key string) string {
	return fmt.Sprintf("mem://%s/%s", s.name, key)
}

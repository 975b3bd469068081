package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/archdrive/internal/common"
)

type memObject struct {
	data         []byte
	contentType  string
	lastModified time.Time
}

// MemoryStore keeps objects in a map and reproduces the list-objects-v2
// prefix/delimiter rules. Listings are returned in lexicographic key order,
// like S3.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]memObject
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		objects: make(map[string]memObject),
		now:     time.Now,
	}
}

func (m *MemoryStore) Put(ctx context.Context, in PutInput) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var data []byte
	if in.Body != nil {
		b, err := io.ReadAll(in.Body)
		if err != nil {
			return fmt.Errorf("put %q: %w: %w", in.Key, common.ErrorTransport, err)
		}
		data = b
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[in.Key] = memObject{data: data, contentType: in.ContentType, lastModified: m.now()}
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, ObjectInfo{}, err
	}

	m.mu.RLock()
	obj, ok := m.objects[key]
	m.mu.RUnlock()
	if !ok {
		return nil, ObjectInfo{}, fmt.Errorf("get %q: %w", key, common.ErrorNotFound)
	}

	return io.NopCloser(bytes.NewReader(obj.data)), obj.info(key), nil
}

func (m *MemoryStore) Head(ctx context.Context, key string) (ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return ObjectInfo{}, err
	}

	m.mu.RLock()
	obj, ok := m.objects[key]
	m.mu.RUnlock()
	if !ok {
		return ObjectInfo{}, fmt.Errorf("head %q: %w", key, common.ErrorNotFound)
	}
	return obj.info(key), nil
}

func (m *MemoryStore) List(ctx context.Context, in ListInput) (Listing, error) {
	if err := ctx.Err(); err != nil {
		return Listing{}, err
	}

	m.mu.RLock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		if strings.HasPrefix(k, in.Prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var listing Listing
	seen := make(map[string]struct{})
	for _, k := range keys {
		rest := k[len(in.Prefix):]
		if in.Delimiter != "" {
			if i := strings.Index(rest, in.Delimiter); i >= 0 {
				cp := in.Prefix + rest[:i+len(in.Delimiter)]
				if _, ok := seen[cp]; !ok {
					seen[cp] = struct{}{}
					listing.CommonPrefixes = append(listing.CommonPrefixes, cp)
				}
				continue
			}
		}
		listing.Objects = append(listing.Objects, m.objects[k].info(k))
	}
	m.mu.RUnlock()

	return listing, nil
}

// Delete is idempotent, matching S3: removing a missing key succeeds.
func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	delete(m.objects, key)
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored objects.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}

func (o memObject) info(key string) ObjectInfo {
	return ObjectInfo{
		Key:          key,
		Size:         int64(len(o.data)),
		ContentType:  o.contentType,
		LastModified: o.lastModified,
	}
}

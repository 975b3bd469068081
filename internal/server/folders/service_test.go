package folders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/archdrive/internal/common"
	"github.com/dmitrijs2005/archdrive/internal/logging"
	"github.com/dmitrijs2005/archdrive/internal/server/objectstore"
)

func seededStore(t *testing.T, keys ...string) *objectstore.MemoryStore {
	t.Helper()
	m := objectstore.NewMemoryStore()
	for _, k := range keys {
		require.NoError(t, m.Put(context.Background(), objectstore.PutInput{Key: k, Body: strings.NewReader("x"), ContentLength: 1}))
	}
	return m
}

func newTestService(store objectstore.Store) *Service {
	s := NewService(store, 2, logging.Nop())
	s.now = func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) }
	return s
}

func folderNames(t *testing.T, s *Service, parent string) map[string]int {
	t.Helper()
	list, err := s.ListFolders(context.Background(), parent)
	require.NoError(t, err)
	out := make(map[string]int, len(list))
	for _, f := range list {
		out[f.Name] = f.FileCount
	}
	return out
}

func TestListFolders_DirectChildrenOnly(t *testing.T) {
	s := newTestService(seededStore(t, "docs/abc_x.txt", "docs/sub/def_y.txt", "root_z.txt"))

	root, err := s.ListFolders(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, root, 1)
	assert.Equal(t, "docs", root[0].Name)
	assert.Equal(t, "docs/", root[0].Path)
	assert.Equal(t, "docs/", root[0].ID)
	assert.Equal(t, 1, root[0].FileCount)
	assert.False(t, root[0].CreatedAt.IsZero())

	assert.Equal(t, map[string]int{"sub": 1}, folderNames(t, s, "docs/"))
	assert.Equal(t, map[string]int{"sub": 1}, folderNames(t, s, "docs"), "parent is normalized")
}

func TestListFolders_PreservesOrder(t *testing.T) {
	var keys []string
	for i := 0; i < 20; i++ {
		keys = append(keys, fmt.Sprintf("f%02d/a_b", i))
	}
	s := newTestService(seededStore(t, keys...))

	list, err := s.ListFolders(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, list, 20)
	for i, f := range list {
		assert.Equal(t, fmt.Sprintf("f%02d", i), f.Name)
		assert.Equal(t, 1, f.FileCount)
	}
}

func TestCreateFolder_ThenList(t *testing.T) {
	store := seededStore(t, "docs/abc_x.txt")
	s := newTestService(store)

	f, err := s.CreateFolder(context.Background(), "photos", "")
	require.NoError(t, err)
	assert.Equal(t, "photos", f.Name)
	assert.Equal(t, "photos/", f.Path)

	info, err := store.Head(context.Background(), "photos/.keep")
	require.NoError(t, err)
	assert.Equal(t, int64(0), info.Size)
	assert.Equal(t, common.DirectoryContentType, info.ContentType)

	assert.Equal(t, map[string]int{"docs": 1, "photos": 0}, folderNames(t, s, ""))
}

func TestCreateFolder_Nested(t *testing.T) {
	store := objectstore.NewMemoryStore()
	s := newTestService(store)

	f, err := s.CreateFolder(context.Background(), " 2024 ", "/photos/")
	require.NoError(t, err)
	assert.Equal(t, "2024", f.Name)
	assert.Equal(t, "photos/2024/", f.Path)

	assert.Equal(t, map[string]int{"photos": 0}, folderNames(t, s, ""))
	assert.Equal(t, map[string]int{"2024": 0}, folderNames(t, s, "photos"))
}

func TestCreateFolder_Invalid(t *testing.T) {
	s := newTestService(objectstore.NewMemoryStore())

	for _, tc := range []struct{ name, parent string }{
		{"", ""},
		{"   ", "docs"},
		{"..", ""},
		{"x", "a//b"},
	} {
		_, err := s.CreateFolder(context.Background(), tc.name, tc.parent)
		assert.ErrorIs(t, err, common.ErrorInvalidInput, "name=%q parent=%q", tc.name, tc.parent)
	}
}

func TestDeleteFolder_Recursive(t *testing.T) {
	store := seededStore(t, "docs/abc_x.txt", "docs/sub/def_y.txt", "docs/.keep", "root_z.txt", "docsextra/a_b")
	s := newTestService(store)

	require.NoError(t, s.DeleteFolder(context.Background(), "docs"))

	for _, k := range []string{"docs/abc_x.txt", "docs/sub/def_y.txt", "docs/.keep"} {
		_, err := store.Head(context.Background(), k)
		assert.ErrorIs(t, err, common.ErrorNotFound, k)
	}
	assert.Equal(t, 2, store.Len(), "siblings sharing a name prefix survive")

	listing, err := store.List(context.Background(), objectstore.ListInput{Prefix: "docs/"})
	require.NoError(t, err)
	assert.Empty(t, listing.Objects)
}

func TestDeleteFolder_WithoutPlaceholder(t *testing.T) {
	store := seededStore(t, "docs/abc_x.txt")
	require.NoError(t, newTestService(store).DeleteFolder(context.Background(), "docs/"))
	assert.Zero(t, store.Len())
}

func TestDeleteFolder_RejectsRoot(t *testing.T) {
	store := seededStore(t, "root_z.txt")
	err := newTestService(store).DeleteFolder(context.Background(), " / ")
	assert.ErrorIs(t, err, common.ErrorInvalidInput)
	assert.Equal(t, 1, store.Len())
}

// faultyStore wraps a real store and fails selected calls.
type faultyStore struct {
	objectstore.Store

	mu           sync.Mutex
	failListOn   string
	failDeleteOn string
	missingKeep  bool
}

func (f *faultyStore) List(ctx context.Context, in objectstore.ListInput) (objectstore.Listing, error) {
	if f.failListOn != "" && in.Prefix == f.failListOn {
		return objectstore.Listing{}, fmt.Errorf("%w: list timeout", common.ErrorTransport)
	}
	return f.Store.List(ctx, in)
}

func (f *faultyStore) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if key == f.failDeleteOn {
		return fmt.Errorf("%w: delete refused", common.ErrorTransport)
	}
	if f.missingKeep && strings.HasSuffix(key, "/.keep") {
		return fmt.Errorf("delete %q: %w", key, common.ErrorNotFound)
	}
	return f.Store.Delete(ctx, key)
}

func TestListFolders_CountErrorFailsListing(t *testing.T) {
	store := &faultyStore{Store: seededStore(t, "a/x_y", "b/x_y"), failListOn: "b/"}

	_, err := newTestService(store).ListFolders(context.Background(), "")
	assert.ErrorIs(t, err, common.ErrorTransport)
	assert.ErrorContains(t, err, `count files in "b/"`)
}

func TestDeleteFolder_IgnoresMissingPlaceholder(t *testing.T) {
	store := &faultyStore{Store: seededStore(t, "docs/a_b"), missingKeep: true}
	assert.NoError(t, newTestService(store).DeleteFolder(context.Background(), "docs"))
}

func TestDeleteFolder_StopsOnDeleteError(t *testing.T) {
	store := &faultyStore{Store: seededStore(t, "docs/a_b", "docs/c_d"), failDeleteOn: "docs/a_b"}

	err := newTestService(store).DeleteFolder(context.Background(), "docs")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrorTransport))
}

package objectstore

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/archdrive/internal/common"
)

func seed(t *testing.T, m *MemoryStore, keys ...string) {
	t.Helper()
	for _, k := range keys {
		require.NoError(t, m.Put(context.Background(), PutInput{Key: k, Body: strings.NewReader(k), ContentLength: int64(len(k))}))
	}
}

func TestMemoryStore_PutGetHeadDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	fixed := time.Date(2025, 5, 6, 7, 8, 9, 0, time.UTC)
	m.now = func() time.Time { return fixed }

	require.NoError(t, m.Put(ctx, PutInput{Key: "a_b.txt", Body: strings.NewReader("hi"), ContentType: "text/plain"}))

	rc, info, err := m.Get(ctx, "a_b.txt")
	require.NoError(t, err)
	b, _ := io.ReadAll(rc)
	assert.Equal(t, "hi", string(b))
	assert.Equal(t, ObjectInfo{Key: "a_b.txt", Size: 2, ContentType: "text/plain", LastModified: fixed}, info)

	head, err := m.Head(ctx, "a_b.txt")
	require.NoError(t, err)
	assert.Equal(t, info, head)

	require.NoError(t, m.Delete(ctx, "a_b.txt"))
	require.NoError(t, m.Delete(ctx, "a_b.txt"), "delete is idempotent")

	_, _, err = m.Get(ctx, "a_b.txt")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	_, err = m.Head(ctx, "a_b.txt")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.Zero(t, m.Len())
}

func TestMemoryStore_ListDelimiter(t *testing.T) {
	m := NewMemoryStore()
	seed(t, m, "docs/abc_x.txt", "docs/sub/def_y.txt", "root_z.txt", "photos/.keep", "docs/sub/deeper/q_w")

	root, err := m.List(context.Background(), ListInput{Delimiter: "/"})
	require.NoError(t, err)
	assert.Equal(t, []string{"docs/", "photos/"}, root.CommonPrefixes)
	require.Len(t, root.Objects, 1)
	assert.Equal(t, "root_z.txt", root.Objects[0].Key)

	docs, err := m.List(context.Background(), ListInput{Prefix: "docs/", Delimiter: "/"})
	require.NoError(t, err)
	assert.Equal(t, []string{"docs/sub/"}, docs.CommonPrefixes)
	require.Len(t, docs.Objects, 1)
	assert.Equal(t, "docs/abc_x.txt", docs.Objects[0].Key)
}

func TestMemoryStore_ListRecursive(t *testing.T) {
	m := NewMemoryStore()
	seed(t, m, "docs/b", "docs/a", "docs/sub/c", "other")

	l, err := m.List(context.Background(), ListInput{Prefix: "docs/"})
	require.NoError(t, err)

	var keys []string
	for _, o := range l.Objects {
		keys = append(keys, o.Key)
	}
	assert.Equal(t, []string{"docs/a", "docs/b", "docs/sub/c"}, keys)
	assert.Empty(t, l.CommonPrefixes)
}

func TestMemoryStore_HonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := NewMemoryStore()
	assert.ErrorIs(t, m.Put(ctx, PutInput{Key: "k"}), context.Canceled)
	_, err := m.List(ctx, ListInput{})
	assert.ErrorIs(t, err, context.Canceled)
}

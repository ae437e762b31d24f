package store_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattsolo1/grove-docnav/pkg/models"
	"github.com/mattsolo1/grove-docnav/pkg/store"
	"github.com/mattsolo1/grove-docnav/pkg/store/storetest"
)

var errOffline = errors.New("network unreachable")

func newTestMemory() *storetest.Memory {
	modified := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return storetest.NewMemory().
		Put(&models.Node{ID: models.RootID, Name: "My Drive", Kind: models.KindFolder}).
		Put(&models.Node{ID: "docs", Name: "Docs", Kind: models.KindFolder, Parents: []string{models.RootID},
			Description: "displayInContent: table"}).
		Put(&models.Node{ID: "readme", Name: "README", Kind: models.KindPlain, MimeType: "text/markdown",
			Parents: []string{"docs"}, ModifiedAt: modified, Capabilities: models.Capabilities{CanEdit: true}}).
		Put(&models.Node{ID: "shared", Name: "Shared", Kind: models.KindFolderShortcut, Parents: []string{"docs"},
			ShortcutTarget: "elsewhere", ShortcutTargetKind: models.KindFolder})
}

func newTestCache(t *testing.T, remote store.Store) *store.Cache {
	t.Helper()
	c, err := store.NewCache(filepath.Join(t.TempDir(), "cache", "nodes.db"), remote, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestCacheServesStaleOnTransientError(t *testing.T) {
	mem := newTestMemory()
	c := newTestCache(t, mem)
	ctx := context.Background()

	fresh, err := c.FetchChildren(ctx, "docs")
	require.NoError(t, err)
	require.Len(t, fresh, 2)

	mem.Fail("docs", errOffline)

	cached, err := c.FetchChildren(ctx, "docs")
	require.NoError(t, err)
	assert.Equal(t, cachedIDs(fresh), cachedIDs(cached))

	readme := cached[0]
	assert.Equal(t, []string{"docs"}, readme.Parents)
	assert.True(t, readme.Capabilities.CanEdit)
	assert.True(t, readme.ModifiedAt.Equal(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)))

	shared := cached[1]
	assert.Equal(t, models.KindFolderShortcut, shared.Kind)
	assert.Equal(t, models.KindFolder, shared.ShortcutTargetKind)
	assert.Equal(t, "elsewhere", shared.ShortcutTarget)

	node, err := c.FetchNode(ctx, "readme")
	require.NoError(t, err)
	assert.Equal(t, "README", node.Name)

	mem.Fail("readme", errOffline)
	node, err = c.FetchNode(ctx, "readme")
	require.NoError(t, err)
	assert.Equal(t, "README", node.Name)
}

func TestCacheEmptyListingIsKnown(t *testing.T) {
	mem := storetest.NewMemory().Put(&models.Node{ID: "empty", Kind: models.KindFolder})
	c := newTestCache(t, mem)
	ctx := context.Background()

	children, err := c.FetchChildren(ctx, "empty")
	require.NoError(t, err)
	assert.Empty(t, children)

	mem.Fail("empty", errOffline)
	children, err = c.FetchChildren(ctx, "empty")
	require.NoError(t, err)
	assert.Empty(t, children)
}

func TestCacheMissReturnsRemoteError(t *testing.T) {
	mem := newTestMemory()
	mem.Fail("docs", errOffline)
	c := newTestCache(t, mem)

	_, err := c.FetchChildren(context.Background(), "docs")
	assert.ErrorIs(t, err, errOffline)

	_, err = c.FetchNode(context.Background(), "docs")
	assert.ErrorIs(t, err, errOffline)
}

func TestCacheTerminalErrorEvicts(t *testing.T) {
	mem := newTestMemory()
	c := newTestCache(t, mem)
	ctx := context.Background()

	_, err := c.FetchChildren(ctx, "docs")
	require.NoError(t, err)

	mem.Fail("docs", store.ErrPermission)
	_, err = c.FetchChildren(ctx, "docs")
	assert.ErrorIs(t, err, store.ErrPermission)

	mem.Fail("docs", errOffline)
	_, err = c.FetchChildren(ctx, "docs")
	assert.ErrorIs(t, err, errOffline, "evicted listing must not be served")
}

func TestCacheStatsAndClear(t *testing.T) {
	mem := newTestMemory()
	c := newTestCache(t, mem)
	ctx := context.Background()

	_, err := c.FetchChildren(ctx, models.RootID)
	require.NoError(t, err)
	_, err = c.FetchChildren(ctx, "docs")
	require.NoError(t, err)

	nodes, listings, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, nodes)
	assert.Equal(t, 2, listings)

	require.NoError(t, c.Clear(ctx))
	nodes, listings, err = c.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, nodes)
	assert.Zero(t, listings)
}

func TestCacheReopenKeepsEntries(t *testing.T) {
	mem := newTestMemory()
	dbPath := filepath.Join(t.TempDir(), "nodes.db")
	ctx := context.Background()

	c, err := store.NewCache(dbPath, mem, nil)
	require.NoError(t, err)
	_, err = c.FetchChildren(ctx, "docs")
	require.NoError(t, err)
	require.NoError(t, c.Close())

	mem.Fail("docs", errOffline)
	c, err = store.NewCache(dbPath, mem, nil)
	require.NoError(t, err)
	defer c.Close()

	children, err := c.FetchChildren(ctx, "docs")
	require.NoError(t, err)
	assert.Len(t, children, 2)
}

func cachedIDs(nodes []*models.Node) []string {
	ids := make([]string, 0, len(nodes))
	for _, n := range nodes {
		ids = append(ids, n.ID)
	}
	return ids
}

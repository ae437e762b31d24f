package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattsolo1/grove-docnav/pkg/models"
	"github.com/mattsolo1/grove-docnav/pkg/store"
)

func TestContentDisplay(t *testing.T) {
	tests := []struct {
		name      string
		mode      models.DisplayMode
		hasReadme bool
		want      models.DisplayMode
	}{
		{"unset without readme", models.DisplayUnset, false, models.DisplayTable},
		{"list without readme", models.DisplayList, false, models.DisplayList},
		{"hide without readme", models.DisplayHide, false, models.DisplayHide},
		{"unset with readme", models.DisplayUnset, true, models.DisplayList},
		{"table with readme", models.DisplayTable, true, models.DisplayHide},
		{"list with readme", models.DisplayList, true, models.DisplayList},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, contentDisplay(tt.mode, tt.hasReadme))
		})
	}
}

func TestIsReadme(t *testing.T) {
	assert.True(t, isReadme("README"))
	assert.True(t, isReadme("readme.md"))
	assert.True(t, isReadme("ReadMe.html"))
	assert.False(t, isReadme("readme-old.md"))
	assert.False(t, isReadme("notes"))
}

func TestFolderContents(t *testing.T) {
	st := newTestStore().
		Put(&models.Node{ID: "readme", Name: "README", Kind: models.KindPlain, Parents: []string{"archive"},
			Capabilities: models.Capabilities{CanEdit: true}}).
		Put(&models.Node{ID: "wiki", Name: "[Wiki](https://wiki.example.com)", Kind: models.KindLink, Parents: []string{"archive"}})
	archive := folder("archive", "Archive", models.RootID)
	archive.Description = "displayInContent: table"
	st.Put(archive)

	s := openSession(t, st)
	contents, err := s.FolderContents(context.Background(), "archive")
	require.NoError(t, err)

	assert.Equal(t, "archive", contents.Folder.ID)
	assert.Equal(t, models.DisplayHide, contents.Display)
	require.Len(t, contents.Entries, 2)
	assert.Equal(t, "Wiki", contents.Entries[1].Name)
	assert.Equal(t, "https://wiki.example.com", contents.Entries[1].URL)
	require.NotNil(t, contents.Readme)
	assert.Equal(t, "readme", contents.Readme.ID)
	assert.True(t, contents.Readme.CanEdit)
	assert.False(t, contents.OpenInNewWindow)

	_, err = s.FolderContents(context.Background(), "notes")
	assert.Error(t, err)
}

func TestFolderContentsThroughShortcut(t *testing.T) {
	st := newTestStore().
		Put(folder("external", "External", "")).
		Put(file("ext-doc", "Doc", "external")).
		Put(&models.Node{ID: "ext-link", Name: "External", Kind: models.KindFolderShortcut, Parents: []string{models.RootID},
			ShortcutTarget: "external", ShortcutTargetKind: models.KindFolder})

	s := openSession(t, st)
	contents, err := s.FolderContents(context.Background(), "ext-link")
	require.NoError(t, err)

	assert.Equal(t, "external", contents.Folder.ID)
	assert.True(t, contents.OpenInNewWindow)
	assert.Equal(t, models.DisplayTable, contents.Display)
	require.Len(t, contents.Entries, 1)
	assert.Nil(t, contents.Readme)
}

func TestServiceNewWithCache(t *testing.T) {
	storeDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(storeDir, "guides"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(storeDir, "guides", "README.md"), []byte("# Guides\n"), 0644))

	svc, err := New(&Config{StoreDir: storeDir, DataDir: t.TempDir(), Cache: true}, testLogger())
	require.NoError(t, err)
	defer svc.Close()

	require.NotNil(t, svc.Cache())
	_, ok := svc.Store.(*store.Cache)
	assert.True(t, ok)
	assert.Equal(t, models.RootID, svc.Config.RootID)

	s, err := svc.OpenSession(context.Background())
	require.NoError(t, err)
	defer s.Close()

	contents, err := s.FolderContents(context.Background(), "guides")
	require.NoError(t, err)
	require.NotNil(t, contents.Readme)
	assert.Equal(t, models.DisplayList, contents.Display)

	nodes, listings, err := svc.Cache().Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, nodes)
	assert.Equal(t, 2, listings)
}

func TestServiceNewRequiresStoreDir(t *testing.T) {
	_, err := New(&Config{}, testLogger())
	assert.Error(t, err)
}

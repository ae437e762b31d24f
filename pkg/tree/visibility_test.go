package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mattsolo1/grove-docnav/pkg/models"
)

func TestVisibleChildren(t *testing.T) {
	f1 := folder("f1", "F1")
	f2 := folder("f2", "F2")
	d1 := doc("d1", "D1")
	d2 := doc("d2", "D2")
	shortcut := &models.Node{ID: "s1", Kind: models.KindFolderShortcut, ShortcutTargetKind: models.KindFolder}
	children := []*models.Node{d1, f1, shortcut, d2, f2}

	hidden := folder("p", "P")
	hidden.Description = "displayInSidebar: false"

	tests := []struct {
		name       string
		parent     *models.Node
		showFiles  bool
		folders    []*models.Node
		nonFolders []*models.Node
	}{
		{"folders only", folder("p", "P"), false, []*models.Node{f1, shortcut, f2}, nil},
		{"with files", folder("p", "P"), true, []*models.Node{f1, shortcut, f2}, []*models.Node{d1, d2}},
		{"unfetched parent uses defaults", nil, true, []*models.Node{f1, shortcut, f2}, []*models.Node{d1, d2}},
		{"hidden in sidebar", hidden, false, nil, nil},
		{"hidden in sidebar ignores showFiles", hidden, true, nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := VisibleChildren(tt.parent, children, tt.showFiles)
			assert.Equal(t, tt.folders, got.Folders)
			assert.Equal(t, tt.nonFolders, got.NonFolders)
		})
	}
}

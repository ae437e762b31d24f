package service

import (
	"context"
	"fmt"
	"path"
	"strings"

	"golang.org/x/text/cases"

	"github.com/mattsolo1/grove-docnav/pkg/models"
)

// ContentEntry is one child listed on a folder's content page.
type ContentEntry struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Kind     models.Kind `json:"kind"`
	URL      string      `json:"url,omitempty"`
	CanEdit  bool        `json:"can_edit"`
	Modified string      `json:"modified,omitempty"`
}

// FolderContents describes how a folder's children are presented next to
// the tree.
type FolderContents struct {
	Folder  *models.Node       `json:"folder"`
	Display models.DisplayMode `json:"display"`
	Entries []ContentEntry     `json:"entries"`
	Readme  *ContentEntry      `json:"readme,omitempty"`

	// OpenInNewWindow is set when the folder was reached through a shortcut
	// and is not part of the navigation tree.
	OpenInNewWindow bool `json:"open_in_new_window,omitempty"`
}

// FolderContents lists the children of folder id. A folder shortcut is
// followed to its target.
func (s *Session) FolderContents(ctx context.Context, id string) (*FolderContents, error) {
	folder, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}

	var shortcut *models.Node
	if folder.Kind == models.KindFolderShortcut {
		if !folder.ActsAsFolder() || folder.ShortcutTarget == "" {
			return nil, fmt.Errorf("%s does not point at a folder", id)
		}
		shortcut = folder
		if folder, err = s.lookup(ctx, folder.ShortcutTarget); err != nil {
			return nil, err
		}
	}
	if !folder.ActsAsFolder() {
		return nil, fmt.Errorf("%s is not a folder", id)
	}

	fctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	children, err := s.store.FetchChildren(fctx, folder.ID)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", folder.ID, err)
	}

	contents := &FolderContents{
		Folder:  folder,
		Entries: make([]ContentEntry, 0, len(children)),
	}
	if shortcut != nil {
		contents.OpenInNewWindow = s.Node(folder.ID) == nil
	}
	for _, child := range children {
		entry := newContentEntry(child)
		contents.Entries = append(contents.Entries, entry)
		if contents.Readme == nil && isReadme(child.Name) {
			readme := entry
			contents.Readme = &readme
		}
	}

	contents.Display = contentDisplay(folder.DisplaySettings().DisplayInContent, contents.Readme != nil)
	return contents, nil
}

// contentDisplay resolves the effective display mode. Next to a readme the
// listing defaults to a list and a table is collapsed out of the way.
func contentDisplay(mode models.DisplayMode, hasReadme bool) models.DisplayMode {
	if !hasReadme {
		if mode == models.DisplayUnset {
			return models.DisplayTable
		}
		return mode
	}
	switch mode {
	case models.DisplayUnset:
		return models.DisplayList
	case models.DisplayTable:
		return models.DisplayHide
	}
	return mode
}

func (s *Session) lookup(ctx context.Context, id string) (*models.Node, error) {
	if node := s.Node(id); node != nil {
		return node, nil
	}
	fctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	node, err := s.store.FetchNode(fctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", id, err)
	}
	return node, nil
}

func newContentEntry(n *models.Node) ContentEntry {
	entry := ContentEntry{
		ID:      n.ID,
		Name:    n.Name,
		Kind:    n.Kind,
		CanEdit: n.Capabilities.CanEdit,
	}
	if !n.ModifiedAt.IsZero() {
		entry.Modified = n.ModifiedAt.Format("2006-01-02 15:04")
	}
	if link := models.ParseMarkdownLink(n.Name); link != nil {
		entry.Name = link.Title
		entry.URL = link.URL
	}
	return entry
}

func isReadme(name string) bool {
	base := strings.TrimSuffix(name, path.Ext(name))
	return cases.Fold().String(base) == "readme"
}

package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/mattsolo1/grove-docnav/pkg/frontmatter"
	"github.com/mattsolo1/grove-docnav/pkg/models"
)

// FolderSettingsFile holds a folder's display settings in an FS store.
const FolderSettingsFile = ".folder.yaml"

// FS serves a directory tree as a file store.
//
// Ids are slash-separated paths relative to the directory, with the
// directory itself as models.RootID. Directories are folders, symlinks to
// directories are folder shortcuts, *.link files holding "[title](url)" are
// links, and every other non-hidden file is a document.
type FS struct {
	dir string
}

// NewFS creates a store rooted at dir.
func NewFS(dir string) (*FS, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve store dir: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("open store dir: %w", mapFSError(err))
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("store dir %s is not a directory", abs)
	}
	return &FS{dir: abs}, nil
}

// Dir returns the absolute directory backing the store.
func (s *FS) Dir() string {
	return s.dir
}

// FetchNode implements Store.
func (s *FS) FetchNode(ctx context.Context, id string) (*models.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := s.pathFor(id)
	if err != nil {
		return nil, err
	}
	info, err := os.Lstat(p)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", id, mapFSError(err))
	}
	return s.newNode(id, p, info)
}

// FetchChildren implements Store.
func (s *FS) FetchChildren(ctx context.Context, folderID string) ([]*models.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := s.pathFor(folderID)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(p)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", folderID, mapFSError(err))
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a folder: %w", folderID, ErrNotFound)
	}

	entries, err := os.ReadDir(p)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", folderID, mapFSError(err))
	}

	var children []*models.Node
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue // Removed while listing
		}
		child, err := s.newNode(childID(folderID, entry.Name()), filepath.Join(p, entry.Name()), info)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return children, nil
}

// FetchDocument implements Store.
func (s *FS) FetchDocument(ctx context.Context, id string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := s.pathFor(id)
	if err != nil {
		return nil, err
	}
	content, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", id, mapFSError(err))
	}

	doc := &Document{ID: id, MimeType: mimeTypeFor(p), Body: content}
	if doc.MimeType == "text/markdown" {
		if _, body, err := frontmatter.Parse(string(content)); err == nil {
			doc.Body = []byte(body)
		}
	}
	return doc, nil
}

func (s *FS) newNode(id, p string, info fs.FileInfo) (*models.Node, error) {
	node := &models.Node{
		ID:         id,
		Name:       info.Name(),
		ModifiedAt: info.ModTime(),
		Capabilities: models.Capabilities{
			CanEdit: info.Mode().Perm()&0o200 != 0,
		},
	}
	if parent := parentID(id); parent != "" {
		node.Parents = []string{parent}
	}
	if id == models.RootID {
		node.Name = filepath.Base(s.dir)
	}

	switch {
	case info.Mode()&os.ModeSymlink != 0:
		target, err := os.Stat(p)
		if err != nil {
			// Dangling shortcut: keep it visible as a plain file.
			node.Kind = models.KindPlain
			return node, nil
		}
		node.Kind = models.KindFolderShortcut
		node.ShortcutTargetKind = models.KindPlain
		if target.IsDir() {
			node.ShortcutTargetKind = models.KindFolder
		}
		if resolved, err := filepath.EvalSymlinks(p); err == nil {
			node.ShortcutTarget = s.idFor(resolved)
		}

	case info.IsDir():
		node.Kind = models.KindFolder
		node.MimeType = "inode/directory"
		if settings, err := os.ReadFile(filepath.Join(p, FolderSettingsFile)); err == nil {
			node.Description = string(settings)
		}

	case strings.HasSuffix(info.Name(), ".link"):
		node.Kind = models.KindLink
		content, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read link %s: %w", id, mapFSError(err))
		}
		target := strings.TrimSpace(string(content))
		if models.ParseMarkdownLink(target) != nil {
			node.Name = target
		} else {
			node.Name = fmt.Sprintf("[%s](%s)", strings.TrimSuffix(info.Name(), ".link"), target)
		}

	default:
		node.Kind = models.KindPlain
		node.MimeType = mimeTypeFor(p)
		if node.MimeType == "text/markdown" {
			s.applyFrontmatter(node, p)
		}
	}

	return node, nil
}

func (s *FS) applyFrontmatter(node *models.Node, p string) {
	content, err := os.ReadFile(p)
	if err != nil {
		return
	}
	fm, _, err := frontmatter.Parse(string(content))
	if err != nil || fm == nil {
		return
	}
	if fm.Title != "" {
		node.Name = fm.Title
	}
	if fm.ReadOnly {
		node.Capabilities.CanEdit = false
	}
	if modified, err := frontmatter.ParseTimestamp(fm.Modified); err == nil {
		node.ModifiedAt = modified
	}
}

// pathFor maps an id onto the filesystem, refusing ids that escape the store.
func (s *FS) pathFor(id string) (string, error) {
	if id == models.RootID || id == "" {
		return s.dir, nil
	}
	clean := path.Clean(id)
	if clean == ".." || strings.HasPrefix(clean, "../") || path.IsAbs(clean) {
		return "", fmt.Errorf("id %q: %w", id, ErrNotFound)
	}
	return filepath.Join(s.dir, filepath.FromSlash(clean)), nil
}

func (s *FS) idFor(abs string) string {
	rel, err := filepath.Rel(s.dir, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return abs
	}
	if rel == "." {
		return models.RootID
	}
	return filepath.ToSlash(rel)
}

func childID(folderID, name string) string {
	if folderID == models.RootID || folderID == "" {
		return name
	}
	return folderID + "/" + name
}

func parentID(id string) string {
	if id == models.RootID || id == "" {
		return ""
	}
	dir := path.Dir(id)
	if dir == "." || dir == "/" {
		return models.RootID
	}
	return dir
}

func mimeTypeFor(p string) string {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".md", ".markdown":
		return "text/markdown"
	case ".html", ".htm":
		return "text/html"
	}
	if t := mime.TypeByExtension(filepath.Ext(p)); t != "" {
		return t
	}
	return "application/octet-stream"
}

func mapFSError(err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %v", ErrPermission, err)
	}
	return err
}

package store

import (
	"context"
	"errors"

	"github.com/mattsolo1/grove-docnav/pkg/models"
)

var (
	// ErrNotFound is returned when the requested id no longer exists.
	ErrNotFound = errors.New("not found")
	// ErrPermission is returned when access to the id is denied.
	ErrPermission = errors.New("permission denied")
)

// Document is the exported body of a document.
type Document struct {
	ID       string
	MimeType string // "text/html" or "text/markdown"
	Body     []byte
}

// Store defines the remote hierarchical file store the navigation tree is
// built from.
type Store interface {
	// FetchNode fetches a single node's metadata. A missing id returns ErrNotFound.
	FetchNode(ctx context.Context, id string) (*models.Node, error)
	// FetchChildren fetches the children of a folder in store order.
	FetchChildren(ctx context.Context, folderID string) ([]*models.Node, error)
	// FetchDocument exports a document's body.
	FetchDocument(ctx context.Context, id string) (*Document, error)
}

// IsTerminal reports whether err means the data will not become available by
// asking again: the id is gone or access is denied.
func IsTerminal(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrPermission)
}

package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mattsolo1/grove-docnav/pkg/models"
	"github.com/mattsolo1/grove-docnav/pkg/outline"
	"github.com/mattsolo1/grove-docnav/pkg/store"
)

// ErrUnsupportedDocument is returned for documents without a heading structure.
var ErrUnsupportedDocument = errors.New("unsupported document type")

// Headings fetches a document and builds its heading outline. Concurrent
// calls for the same document share one fetch.
func (s *Session) Headings(ctx context.Context, id string) ([]*outline.Outline, error) {
	v, err, _ := s.group.Do("document/"+id, func() (interface{}, error) {
		fctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		return s.store.FetchDocument(fctx, id)
	})
	if err != nil {
		return nil, fmt.Errorf("fetch document %s: %w", id, err)
	}

	headings, err := ExtractHeadings(v.(*store.Document))
	if err != nil {
		return nil, err
	}
	s.logger.WithField("document", id).WithField("headings", len(headings)).Debug("Built outline")
	return outline.Build(headings), nil
}

// ExtractHeadings reads the flat heading list of an exported document.
func ExtractHeadings(doc *store.Document) ([]models.Heading, error) {
	mimeType := strings.TrimSpace(strings.SplitN(doc.MimeType, ";", 2)[0])
	switch mimeType {
	case "text/html":
		return outline.ExtractHTML(bytes.NewReader(doc.Body))
	case "text/markdown":
		return outline.ExtractMarkdown(doc.Body)
	}
	return nil, fmt.Errorf("%s (%s): %w", doc.ID, doc.MimeType, ErrUnsupportedDocument)
}

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/mattsolo1/grove-docnav/pkg/models"
)

// Cache is a write-through sqlite cache in front of a remote store.
//
// Successful fetches are persisted. When the remote fails with an error that
// is not terminal (see IsTerminal) the last cached copy is served instead.
// Terminal errors are returned as-is and evict the cached copy.
type Cache struct {
	db     *sql.DB
	remote Store
	logger *logrus.Entry
}

// NewCache opens (or creates) the cache database at dbPath.
func NewCache(dbPath string, remote Store, logger *logrus.Entry) (*Cache, error) {
	if logger == nil {
		logger = logrus.NewEntry(logrus.New())
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}

	c := &Cache{
		db:     db,
		remote: remote,
		logger: logger.WithField("sub-component", "cache"),
	}
	if err := c.init(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize cache: %w", err)
	}
	return c, nil
}

// init creates the database schema
func (c *Cache) init() error {
	schema := `
	CREATE TABLE IF NOT EXISTS nodes (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		kind TEXT NOT NULL,
		mime_type TEXT,
		parents TEXT,
		description TEXT,
		modified_at TIMESTAMP,
		shortcut_target TEXT,
		shortcut_target_kind TEXT,
		can_edit BOOLEAN,
		fetched_at TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS listings (
		folder_id TEXT PRIMARY KEY,
		fetched_at TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS children (
		folder_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		child_id TEXT NOT NULL,
		PRIMARY KEY (folder_id, position)
	);

	CREATE INDEX IF NOT EXISTS idx_children_child ON children(child_id);
	`
	_, err := c.db.Exec(schema)
	return err
}

// FetchNode implements Store.
func (c *Cache) FetchNode(ctx context.Context, id string) (*models.Node, error) {
	node, err := c.remote.FetchNode(ctx, id)
	if err == nil {
		if saveErr := c.saveNodes(ctx, node); saveErr != nil {
			c.logger.WithError(saveErr).WithField("id", id).Warn("Failed to cache node")
		}
		return node, nil
	}

	if IsTerminal(err) {
		if evictErr := c.evict(ctx, id); evictErr != nil {
			c.logger.WithError(evictErr).WithField("id", id).Warn("Failed to evict cached node")
		}
		return nil, err
	}

	cached, cacheErr := c.loadNode(ctx, id)
	if cacheErr != nil || cached == nil {
		return nil, err
	}
	c.logger.WithError(err).WithField("id", id).Info("Serving cached node")
	return cached, nil
}

// FetchChildren implements Store.
func (c *Cache) FetchChildren(ctx context.Context, folderID string) ([]*models.Node, error) {
	children, err := c.remote.FetchChildren(ctx, folderID)
	if err == nil {
		if saveErr := c.saveListing(ctx, folderID, children); saveErr != nil {
			c.logger.WithError(saveErr).WithField("folder", folderID).Warn("Failed to cache listing")
		}
		return children, nil
	}

	if IsTerminal(err) {
		if evictErr := c.evict(ctx, folderID); evictErr != nil {
			c.logger.WithError(evictErr).WithField("folder", folderID).Warn("Failed to evict cached listing")
		}
		return nil, err
	}

	cached, ok, cacheErr := c.loadListing(ctx, folderID)
	if cacheErr != nil || !ok {
		return nil, err
	}
	c.logger.WithError(err).WithField("folder", folderID).Info("Serving cached listing")
	return cached, nil
}

// FetchDocument implements Store. Document bodies are not cached.
func (c *Cache) FetchDocument(ctx context.Context, id string) (*Document, error) {
	return c.remote.FetchDocument(ctx, id)
}

// Stats returns the number of cached nodes and folder listings.
func (c *Cache) Stats(ctx context.Context) (nodes, listings int, err error) {
	if err = c.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM nodes").Scan(&nodes); err != nil {
		return 0, 0, err
	}
	if err = c.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM listings").Scan(&listings); err != nil {
		return 0, 0, err
	}
	return nodes, listings, nil
}

// Clear removes every cached entry.
func (c *Cache) Clear(ctx context.Context) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, table := range []string{"children", "listings", "nodes"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Close closes the cache
func (c *Cache) Close() error {
	return c.db.Close()
}

func (c *Cache) saveNodes(ctx context.Context, nodes ...*models.Node) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := upsertNodes(ctx, tx, nodes); err != nil {
		return err
	}
	return tx.Commit()
}

func (c *Cache) saveListing(ctx context.Context, folderID string, children []*models.Node) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := upsertNodes(ctx, tx, children); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM children WHERE folder_id = ?", folderID); err != nil {
		return err
	}
	for i, child := range children {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO children (folder_id, position, child_id) VALUES (?, ?, ?)",
			folderID, i, child.ID); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT OR REPLACE INTO listings (folder_id, fetched_at) VALUES (?, ?)",
		folderID, time.Now()); err != nil {
		return err
	}

	return tx.Commit()
}

func upsertNodes(ctx context.Context, tx *sql.Tx, nodes []*models.Node) error {
	now := time.Now()
	for _, n := range nodes {
		parents, err := json.Marshal(n.Parents)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO nodes (
				id, name, kind, mime_type, parents, description, modified_at,
				shortcut_target, shortcut_target_kind, can_edit, fetched_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, n.ID, n.Name, string(n.Kind), n.MimeType, string(parents), n.Description, n.ModifiedAt,
			n.ShortcutTarget, string(n.ShortcutTargetKind), n.Capabilities.CanEdit, now)
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *Cache) evict(ctx context.Context, id string) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, "DELETE FROM nodes WHERE id = ?", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM children WHERE folder_id = ?", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM listings WHERE folder_id = ?", id); err != nil {
		return err
	}
	return tx.Commit()
}

func (c *Cache) loadNode(ctx context.Context, id string) (*models.Node, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT id, name, kind, mime_type, parents, description, modified_at,
			shortcut_target, shortcut_target_kind, can_edit
		FROM nodes WHERE id = ?
	`, id)
	node, err := scanNode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return node, err
}

func (c *Cache) loadListing(ctx context.Context, folderID string) ([]*models.Node, bool, error) {
	var fetchedAt time.Time
	err := c.db.QueryRowContext(ctx, "SELECT fetched_at FROM listings WHERE folder_id = ?", folderID).Scan(&fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	rows, err := c.db.QueryContext(ctx, `
		SELECT n.id, n.name, n.kind, n.mime_type, n.parents, n.description, n.modified_at,
			n.shortcut_target, n.shortcut_target_kind, n.can_edit
		FROM children c
		JOIN nodes n ON n.id = c.child_id
		WHERE c.folder_id = ?
		ORDER BY c.position
	`, folderID)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	var children []*models.Node
	for rows.Next() {
		node, err := scanNode(rows)
		if err != nil {
			return nil, false, err
		}
		children = append(children, node)
	}
	return children, true, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanNode(s scanner) (*models.Node, error) {
	var (
		node                 models.Node
		kind, targetKind     string
		mimeType, parentsRaw sql.NullString
		description, target  sql.NullString
		modifiedAt           sql.NullTime
		canEdit              sql.NullBool
	)
	if err := s.Scan(&node.ID, &node.Name, &kind, &mimeType, &parentsRaw, &description, &modifiedAt,
		&target, &targetKind, &canEdit); err != nil {
		return nil, err
	}

	node.Kind = models.Kind(kind)
	node.ShortcutTargetKind = models.Kind(targetKind)
	node.MimeType = mimeType.String
	node.Description = description.String
	node.ShortcutTarget = target.String
	node.ModifiedAt = modifiedAt.Time
	node.Capabilities.CanEdit = canEdit.Bool
	if parentsRaw.Valid && parentsRaw.String != "" && parentsRaw.String != "null" {
		if err := json.Unmarshal([]byte(parentsRaw.String), &node.Parents); err != nil {
			return nil, fmt.Errorf("decode parents of %s: %w", node.ID, err)
		}
	}
	return &node, nil
}

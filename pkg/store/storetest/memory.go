// Package storetest provides an in-memory store.Store for driving sessions
// in tests.
package storetest

import (
	"context"
	"fmt"
	"sync"

	"github.com/mattsolo1/grove-docnav/pkg/models"
	"github.com/mattsolo1/grove-docnav/pkg/store"
)

// Memory is an in-process store.Store. Fetches can be made to fail per id
// and held open until released.
type Memory struct {
	mu       sync.Mutex
	nodes    map[string]*models.Node
	children map[string][]string
	docs     map[string]*store.Document
	errs     map[string]error
	gates    map[string]chan struct{}
	calls    map[string]int
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		nodes:    make(map[string]*models.Node),
		children: make(map[string][]string),
		docs:     make(map[string]*store.Document),
		errs:     make(map[string]error),
		gates:    make(map[string]chan struct{}),
		calls:    make(map[string]int),
	}
}

// Put adds or replaces a node. The node is listed under each of its parents
// in insertion order.
func (m *Memory) Put(node *models.Node) *Memory {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nodes[node.ID] = node
	for _, parent := range node.Parents {
		if !contains(m.children[parent], node.ID) {
			m.children[parent] = append(m.children[parent], node.ID)
		}
	}
	if node.ActsAsFolder() {
		if _, ok := m.children[node.ID]; !ok {
			m.children[node.ID] = []string{}
		}
	}
	return m
}

// PutDocument sets a document body.
func (m *Memory) PutDocument(doc *store.Document) *Memory {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[doc.ID] = doc
	return m
}

// Link lists childID under folderID without touching the child's parents.
// Folder shortcuts use it to expose their target's contents.
func (m *Memory) Link(folderID, childID string) *Memory {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !contains(m.children[folderID], childID) {
		m.children[folderID] = append(m.children[folderID], childID)
	}
	return m
}

// Fail makes every fetch of id return err until cleared with a nil err.
func (m *Memory) Fail(id string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.errs, id)
		return
	}
	m.errs[id] = err
}

// Hold blocks fetches of id until the returned function is called.
func (m *Memory) Hold(id string) (release func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	gate := make(chan struct{})
	m.gates[id] = gate
	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			if m.gates[id] == gate {
				delete(m.gates, id)
			}
			m.mu.Unlock()
			close(gate)
		})
	}
}

// Calls returns how many fetches of id reached the store.
func (m *Memory) Calls(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[id]
}

func (m *Memory) enter(ctx context.Context, id string) error {
	m.mu.Lock()
	m.calls[id]++
	gate := m.gates[id]
	m.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.errs[id]
}

// FetchNode implements store.Store.
func (m *Memory) FetchNode(ctx context.Context, id string) (*models.Node, error) {
	if err := m.enter(ctx, id); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	node, ok := m.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node %s: %w", id, store.ErrNotFound)
	}
	clone := *node
	return &clone, nil
}

// FetchChildren implements store.Store.
func (m *Memory) FetchChildren(ctx context.Context, folderID string) ([]*models.Node, error) {
	if err := m.enter(ctx, folderID); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	ids, ok := m.children[folderID]
	if !ok {
		return nil, fmt.Errorf("folder %s: %w", folderID, store.ErrNotFound)
	}
	children := make([]*models.Node, 0, len(ids))
	for _, id := range ids {
		if node, ok := m.nodes[id]; ok {
			clone := *node
			children = append(children, &clone)
		}
	}
	return children, nil
}

// FetchDocument implements store.Store.
func (m *Memory) FetchDocument(ctx context.Context, id string) (*store.Document, error) {
	if err := m.enter(ctx, id); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.docs[id]
	if !ok {
		return nil, fmt.Errorf("document %s: %w", id, store.ErrNotFound)
	}
	return doc, nil
}

var _ store.Store = (*Memory)(nil)

func contains(ids []string, id string) bool {
	for _, existing := range ids {
		if existing == id {
			return true
		}
	}
	return false
}

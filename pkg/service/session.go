package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/mattsolo1/grove-docnav/pkg/models"
	"github.com/mattsolo1/grove-docnav/pkg/navstate"
	"github.com/mattsolo1/grove-docnav/pkg/store"
	"github.com/mattsolo1/grove-docnav/pkg/tree"
)

// Update is delivered on Session.Updates after a fetch result was applied.
type Update struct {
	Generation string
	Command    navstate.Command
	Err        error
}

// Session owns the node and adjacency maps of one navigation view together
// with its expansion state, and turns the commands emitted by the state
// machine into store fetches.
//
// Each command is outstanding at most once per root context. Results that
// arrive after the root was switched are discarded. A failed fetch is not
// retried automatically; see Retry.
type Session struct {
	store   store.Store
	logger  *logrus.Entry
	timeout time.Duration
	group   singleflight.Group

	mu           sync.Mutex
	ctx          context.Context
	cancel       context.CancelFunc
	generation   string
	nodes        models.NodeMap
	children     models.AdjacencyMap
	failures     map[string]error // children fetches
	nodeFailures map[string]error
	machine      *navstate.Machine
	revealer     *navstate.Revealer
	reveal       navstate.Reveal
	pending      map[navstate.Command]struct{}
	inflight     int
	idle         chan struct{}
	updates      chan Update
}

func newSession(st store.Store, logger *logrus.Entry, timeout time.Duration) *Session {
	machine := navstate.New(models.RootID)
	idle := make(chan struct{})
	close(idle)
	return &Session{
		store:        st,
		logger:       logger,
		timeout:      timeout,
		nodes:        models.NodeMap{},
		children:     models.AdjacencyMap{},
		failures:     map[string]error{},
		nodeFailures: map[string]error{},
		machine:      machine,
		revealer:     navstate.NewRevealer(machine),
		pending:      map[navstate.Command]struct{}{},
		idle:         idle,
		updates:      make(chan Update, 1),
	}
}

// Open switches the session to the tree rooted at rootID. Outstanding fetches
// for the previous root are cancelled and their results ignored. The root
// node and its children are loaded concurrently before Open returns.
func (s *Session) Open(ctx context.Context, rootID string) error {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.generation = ulid.Make().String()
	s.machine.Reset(rootID)
	s.revealer.Clear()
	s.reveal = navstate.RevealIdle
	s.failures = map[string]error{}
	s.nodeFailures = map[string]error{}
	s.pending = map[navstate.Command]struct{}{}
	gen := s.generation
	s.mu.Unlock()

	s.logger.WithFields(logrus.Fields{"root": rootID, "generation": gen}).Debug("Opening root")

	var (
		root     *models.Node
		children []*models.Node
		nodeErr  error
		listErr  error
	)
	var g errgroup.Group
	g.Go(func() error {
		fctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		root, nodeErr = s.store.FetchNode(fctx, rootID)
		return nodeErr
	})
	g.Go(func() error {
		fctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		children, listErr = s.store.FetchChildren(fctx, rootID)
		return listErr
	})
	err := g.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return fmt.Errorf("root %s was replaced while opening", rootID)
	}
	s.applyLocked(navstate.Command{Kind: navstate.FetchNode, ID: rootID}, root, nil, nodeErr)
	s.applyLocked(navstate.Command{Kind: navstate.FetchChildren, ID: rootID}, nil, children, listErr)
	s.notifyLocked(Update{Generation: gen, Command: navstate.Command{Kind: navstate.FetchChildren, ID: rootID}, Err: err})

	if err != nil {
		return fmt.Errorf("open root %s: %w", rootID, err)
	}
	return nil
}

// Close cancels every outstanding fetch.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	s.generation = ""
}

// RootID returns the current root.
func (s *Session) RootID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.RootID()
}

// Generation returns the token identifying the current root context.
func (s *Session) Generation() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// Node returns the fetched node for id, or nil.
func (s *Session) Node(id string) *models.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nodes.Get(id)
}

// Children returns the known children of id and whether they are known.
func (s *Session) Children(id string) ([]string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids, ok := s.children.Lookup(id)
	return append([]string(nil), ids...), ok
}

// ToggleExpand expands or collapses a folder. Only the root and fetched
// nodes that act as folders can be expanded.
func (s *Session) ToggleExpand(id string, expanded bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if expanded && id != s.machine.RootID() && !s.nodes.Get(id).ActsAsFolder() {
		s.logger.WithField("id", id).Debug("Ignoring expand of a node that is not a known folder")
		return
	}
	s.dispatchLocked(s.machine.ToggleExpand(id, expanded, s.children), false)
}

// ToggleShowFiles flips whether the non-folder children of id are shown.
func (s *Session) ToggleShowFiles(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.machine.ToggleShowFiles(id)
}

// Select handles a user choosing id in the tree.
func (s *Session) Select(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dispatchLocked(s.machine.Select(id, s.nodes, s.children), false)
}

// Reveal makes id the active node and keeps expanding and fetching its
// ancestors as data arrives until id is reachable from the root.
func (s *Session) Reveal(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revealer.Target(id)
	s.checkRevealLocked()
}

// RevealState reports the progress of the current reveal target.
func (s *Session) RevealState() navstate.Reveal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reveal
}

// ActiveID returns the active node id.
func (s *Session) ActiveID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.ActiveID()
}

// Tree materializes the current view tree.
func (s *Session) Tree() tree.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return tree.Materialize(s.machine.RootID(), s.inputLocked())
}

// Failure returns the error of the last failed children fetch for id.
func (s *Session) Failure(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failures[id]
}

// Pending reports whether a fetch concerning id is outstanding.
func (s *Session) Pending(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for cmd := range s.pending {
		if cmd.ID == id {
			return true
		}
	}
	return false
}

// Retry clears a recorded failure for id and requests the missing data again.
func (s *Session) Retry(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.failures, id)
	delete(s.nodeFailures, id)

	var cmds []navstate.Command
	node := s.nodes.Get(id)
	if node == nil {
		cmds = append(cmds, navstate.Command{Kind: navstate.FetchNode, ID: id})
	}
	folder := node.ActsAsFolder() || id == s.machine.RootID()
	if folder && !s.children.Known(id) {
		cmds = append(cmds, navstate.Command{Kind: navstate.FetchChildren, ID: id})
	}
	s.dispatchLocked(cmds, false)
}

// Updates delivers a notification after fetch results are applied. The
// channel holds a single pending update; a slow reader sees the latest state
// on its next read rather than every intermediate one.
func (s *Session) Updates() <-chan Update {
	return s.updates
}

// Wait blocks until no fetch is outstanding or ctx is done.
func (s *Session) Wait(ctx context.Context) error {
	for {
		s.mu.Lock()
		if s.inflight == 0 {
			s.mu.Unlock()
			return nil
		}
		idle := s.idle
		s.mu.Unlock()

		select {
		case <-idle:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (s *Session) inputLocked() tree.Input {
	failures := make(map[string]error, len(s.failures))
	for id, err := range s.failures {
		failures[id] = err
	}
	return tree.Input{
		Nodes:     s.nodes,
		Children:  s.children,
		ShowFiles: s.machine.ShowFiles(),
		Expanded:  s.machine.Expanded(),
		Failures:  failures,
	}
}

// dispatchLocked starts a fetch for every command not already outstanding.
// Automatic commands skip ids whose last fetch failed.
func (s *Session) dispatchLocked(cmds []navstate.Command, automatic bool) {
	if s.generation == "" {
		return
	}
	for _, cmd := range cmds {
		if _, ok := s.pending[cmd]; ok {
			continue
		}
		if automatic && s.failedLocked(cmd) {
			continue
		}
		s.pending[cmd] = struct{}{}
		if s.inflight == 0 {
			s.idle = make(chan struct{})
		}
		s.inflight++
		go s.run(s.ctx, s.generation, cmd)
	}
}

func (s *Session) failedLocked(cmd navstate.Command) bool {
	switch cmd.Kind {
	case navstate.FetchChildren:
		return s.failures[cmd.ID] != nil
	case navstate.FetchNode:
		return s.nodeFailures[cmd.ID] != nil
	}
	return false
}

type fetchResult struct {
	node     *models.Node
	children []*models.Node
}

func (s *Session) run(ctx context.Context, gen string, cmd navstate.Command) {
	v, err, _ := s.group.Do(gen+"/"+cmd.String(), func() (interface{}, error) {
		fctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		switch cmd.Kind {
		case navstate.FetchChildren:
			children, err := s.store.FetchChildren(fctx, cmd.ID)
			return fetchResult{children: children}, err
		case navstate.FetchNode:
			node, err := s.store.FetchNode(fctx, cmd.ID)
			return fetchResult{node: node}, err
		}
		return fetchResult{}, fmt.Errorf("unknown command %s", cmd)
	})
	res, _ := v.(fetchResult)

	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.doneLocked()

	if gen != s.generation {
		s.logger.WithFields(logrus.Fields{"command": cmd.String(), "generation": gen}).Debug("Discarding result for stale root")
		return
	}
	delete(s.pending, cmd)

	s.applyLocked(cmd, res.node, res.children, err)
	s.checkRevealLocked()
	s.notifyLocked(Update{Generation: gen, Command: cmd, Err: err})
}

func (s *Session) doneLocked() {
	s.inflight--
	if s.inflight == 0 {
		close(s.idle)
	}
}

// applyLocked merges a fetch result into the maps. A fetched node replaces
// any previous value for its id.
func (s *Session) applyLocked(cmd navstate.Command, node *models.Node, children []*models.Node, err error) {
	log := s.logger.WithField("command", cmd.String())

	if err != nil {
		log.WithError(err).Warn("Fetch failed")
		switch cmd.Kind {
		case navstate.FetchChildren:
			if !s.children.Known(cmd.ID) {
				s.failures[cmd.ID] = err
			}
		case navstate.FetchNode:
			s.nodeFailures[cmd.ID] = err
		}
		return
	}

	switch cmd.Kind {
	case navstate.FetchChildren:
		ids := make([]string, 0, len(children))
		for _, child := range children {
			if child == nil {
				continue
			}
			s.nodes[child.ID] = child
			ids = append(ids, child.ID)
		}
		s.children.Set(cmd.ID, ids)
		delete(s.failures, cmd.ID)
		log.WithField("count", len(ids)).Debug("Children loaded")
	case navstate.FetchNode:
		if node != nil {
			s.nodes[node.ID] = node
		}
		delete(s.nodeFailures, cmd.ID)
	}
}

func (s *Session) checkRevealLocked() {
	state, cmds := s.revealer.Check(s.nodes, s.children)
	if state != s.reveal {
		s.logger.WithFields(logrus.Fields{"target": s.revealer.Current(), "state": state.String()}).Debug("Reveal progress")
	}
	s.reveal = state
	s.dispatchLocked(cmds, true)
}

func (s *Session) notifyLocked(u Update) {
	select {
	case s.updates <- u:
	default:
		select {
		case <-s.updates:
		default:
		}
		select {
		case s.updates <- u:
		default:
		}
	}
}

package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattsolo1/grove-docnav/pkg/models"
	"github.com/mattsolo1/grove-docnav/pkg/navstate"
	"github.com/mattsolo1/grove-docnav/pkg/outline"
	"github.com/mattsolo1/grove-docnav/pkg/store"
	"github.com/mattsolo1/grove-docnav/pkg/store/storetest"
	"github.com/mattsolo1/grove-docnav/pkg/tree"
)

var errOffline = errors.New("network unreachable")

func testLogger() *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logrus.NewEntry(logger)
}

func folder(id, name, parent string) *models.Node {
	n := &models.Node{ID: id, Name: name, Kind: models.KindFolder}
	if parent != "" {
		n.Parents = []string{parent}
	}
	return n
}

func file(id, name, parent string) *models.Node {
	return &models.Node{ID: id, Name: name, Kind: models.KindPlain, MimeType: "text/markdown", Parents: []string{parent}}
}

// newTestStore builds:
//
//	root
//	├── guides
//	│   ├── deep
//	│   │   └── page
//	│   └── intro
//	├── archive
//	└── notes.md
func newTestStore() *storetest.Memory {
	return storetest.NewMemory().
		Put(folder(models.RootID, "Drive", "")).
		Put(folder("guides", "Guides", models.RootID)).
		Put(folder("archive", "Archive", models.RootID)).
		Put(file("notes", "notes.md", models.RootID)).
		Put(folder("deep", "Deep", "guides")).
		Put(file("intro", "Intro", "guides")).
		Put(file("page", "Page", "deep"))
}

func openSession(t *testing.T, st store.Store) *Session {
	t.Helper()
	svc := NewWithStore(&Config{FetchTimeout: time.Second}, st, testLogger())
	session, err := svc.OpenSession(context.Background())
	require.NoError(t, err)
	t.Cleanup(session.Close)
	return session
}

func wait(t *testing.T, s *Session) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Wait(ctx))
}

func labels(nodes []*tree.ViewNode) []string {
	var out []string
	for _, n := range nodes {
		out = append(out, n.Label)
	}
	return out
}

func TestSessionOpenLoadsRoot(t *testing.T) {
	s := openSession(t, newTestStore())

	assert.NotEmpty(t, s.Generation())
	assert.Equal(t, models.RootID, s.RootID())
	require.NotNil(t, s.Node(models.RootID))

	res := s.Tree()
	require.Equal(t, tree.StatusLoaded, res.Status)
	assert.Equal(t, []string{"Guides", "Archive"}, labels(res.Nodes))
	assert.Equal(t, tree.ChildrenUnknown, res.Nodes[0].ChildState)
}

func TestSessionOpenFailure(t *testing.T) {
	st := newTestStore()
	st.Fail(models.RootID, errOffline)

	svc := NewWithStore(&Config{}, st, testLogger())
	s := svc.NewSession()
	err := s.Open(context.Background(), models.RootID)
	require.ErrorIs(t, err, errOffline)

	res := s.Tree()
	assert.Equal(t, tree.StatusFailed, res.Status)
	assert.ErrorIs(t, res.Err, errOffline)
}

func TestSessionExpandFetchesOnce(t *testing.T) {
	st := newTestStore()
	s := openSession(t, st)

	release := st.Hold("guides")
	s.ToggleExpand("guides", true)
	s.ToggleExpand("guides", false)
	s.ToggleExpand("guides", true)
	assert.True(t, s.Pending("guides"))
	release()
	wait(t, s)

	assert.Equal(t, 1, st.Calls("guides"))
	assert.False(t, s.Pending("guides"))

	guides := tree.Find(s.Tree().Nodes, "guides")
	require.NotNil(t, guides)
	assert.True(t, guides.Expanded)
	assert.Equal(t, []string{"Deep"}, labels(guides.Children))
	assert.True(t, guides.HasHiddenFiles)

	s.ToggleShowFiles("guides")
	guides = tree.Find(s.Tree().Nodes, "guides")
	assert.Equal(t, []string{"Deep", "Intro"}, labels(guides.Children))
}

func TestSessionUpdatesNotify(t *testing.T) {
	s := openSession(t, newTestStore())

	// Drain the update from Open.
	select {
	case <-s.Updates():
	default:
	}

	s.ToggleExpand("archive", true)
	select {
	case u := <-s.Updates():
		assert.Equal(t, navstate.Command{Kind: navstate.FetchChildren, ID: "archive"}, u.Command)
		assert.Equal(t, s.Generation(), u.Generation)
		assert.NoError(t, u.Err)
	case <-time.After(5 * time.Second):
		t.Fatal("no update delivered")
	}
}

func TestSessionFailureIsLocal(t *testing.T) {
	st := newTestStore()
	st.Fail("guides", errOffline)
	s := openSession(t, st)

	s.ToggleExpand("guides", true)
	s.ToggleExpand("archive", true)
	wait(t, s)

	res := s.Tree()
	require.Equal(t, tree.StatusLoaded, res.Status)
	guides := tree.Find(res.Nodes, "guides")
	require.NotNil(t, guides)
	assert.Equal(t, tree.ChildrenFailed, guides.ChildState)
	assert.Contains(t, guides.Err, "network unreachable")
	assert.Equal(t, tree.ChildrenEmpty, tree.Find(res.Nodes, "archive").ChildState)
	assert.ErrorIs(t, s.Failure("guides"), errOffline)

	st.Fail("guides", nil)
	s.Retry("guides")
	wait(t, s)

	assert.NoError(t, s.Failure("guides"))
	guides = tree.Find(s.Tree().Nodes, "guides")
	assert.Equal(t, tree.ChildrenExpanded, guides.ChildState)
}

func TestSessionDiscardsStaleRoot(t *testing.T) {
	st := newTestStore()
	s := openSession(t, st)
	oldGen := s.Generation()

	release := st.Hold("archive")
	s.ToggleExpand("archive", true)
	require.True(t, s.Pending("archive"))

	require.NoError(t, s.Open(context.Background(), "guides"))
	release()
	wait(t, s)

	assert.NotEqual(t, oldGen, s.Generation())
	assert.Equal(t, "guides", s.RootID())
	assert.False(t, s.Pending("archive"))
	_, known := s.Children("archive")
	assert.False(t, known, "result for the abandoned root must be discarded")

	res := s.Tree()
	require.Equal(t, tree.StatusLoaded, res.Status)
	assert.Equal(t, []string{"Deep"}, labels(res.Nodes))
	assert.False(t, res.Nodes[0].Expanded, "expansion state is reset for a new root")
}

func TestSessionRevealDeepLink(t *testing.T) {
	st := newTestStore()
	s := openSession(t, st)

	s.Reveal("page")
	wait(t, s)

	assert.Equal(t, navstate.RevealSatisfied, s.RevealState())
	assert.Equal(t, "page", s.ActiveID())

	res := s.Tree()
	guides := tree.Find(res.Nodes, "guides")
	require.NotNil(t, guides)
	assert.True(t, guides.Expanded)
	deep := tree.Find(res.Nodes, "deep")
	require.NotNil(t, deep)
	assert.True(t, deep.Expanded)

	// Pages are files; they appear once the folder shows its files.
	s.ToggleShowFiles("deep")
	assert.True(t, tree.Contains(s.Tree().Nodes, "page"))
}

func TestSessionRevealMissingTarget(t *testing.T) {
	st := newTestStore()
	s := openSession(t, st)

	s.Reveal("nowhere")
	wait(t, s)

	assert.Equal(t, navstate.RevealPending, s.RevealState())
	assert.Equal(t, 1, st.Calls("nowhere"), "a failed reveal fetch is not retried automatically")
}

func TestSessionSelectAbandonsPendingReveal(t *testing.T) {
	st := newTestStore()
	s := openSession(t, st)

	release := st.Hold("page")
	s.Reveal("page")
	require.True(t, s.Pending("page"))

	s.Select("archive")
	release()
	wait(t, s)

	assert.Equal(t, "archive", s.ActiveID(), "late reveal data must not take the active node back")
	assert.Equal(t, navstate.RevealIdle, s.RevealState())
}

func TestSessionRevealSameTargetAgain(t *testing.T) {
	s := openSession(t, newTestStore())

	s.Reveal("page")
	wait(t, s)
	require.Equal(t, "page", s.ActiveID())

	s.Select("archive")
	wait(t, s)
	require.Equal(t, "archive", s.ActiveID())

	s.Reveal("page")
	wait(t, s)
	assert.Equal(t, "page", s.ActiveID())
	assert.Equal(t, navstate.RevealSatisfied, s.RevealState())
}

func TestSessionExpandIgnoresNonFolders(t *testing.T) {
	st := newTestStore()
	s := openSession(t, st)

	s.ToggleExpand("notes", true)
	s.ToggleExpand("nowhere", true)
	wait(t, s)

	assert.Zero(t, st.Calls("notes"))
	assert.Zero(t, st.Calls("nowhere"))
	assert.NoError(t, s.Failure("notes"))
	assert.NoError(t, s.Failure("nowhere"))
	assert.False(t, s.Pending("notes"))
}

func TestSessionSelectActiveFolderTogglesFiles(t *testing.T) {
	s := openSession(t, newTestStore())
	s.ToggleExpand("guides", true)
	wait(t, s)

	s.Select("guides")
	wait(t, s)
	assert.Equal(t, "guides", s.ActiveID())
	assert.NotContains(t, labels(tree.Find(s.Tree().Nodes, "guides").Children), "Intro")

	s.Select("guides")
	assert.Contains(t, labels(tree.Find(s.Tree().Nodes, "guides").Children), "Intro")
}

func TestSessionHeadings(t *testing.T) {
	st := newTestStore()
	st.PutDocument(&store.Document{ID: "intro", MimeType: "text/markdown", Body: []byte("# A\n\n### B\n\n## C\n\n# D\n")})
	st.PutDocument(&store.Document{ID: "setup", MimeType: "text/html; charset=utf-8", Body: []byte(`<h2 id="x">Install</h2><p>text</p><h3 id="y">Linux</h3>`)})
	st.PutDocument(&store.Document{ID: "sheet", MimeType: "text/csv", Body: []byte("a,b")})
	s := openSession(t, st)
	ctx := context.Background()

	roots, err := s.Headings(ctx, "intro")
	require.NoError(t, err)
	require.Len(t, roots, 2)
	assert.Equal(t, "A", roots[0].Text)
	require.Len(t, roots[0].Children, 2)
	assert.Equal(t, "B", roots[0].Children[0].Text)
	assert.Equal(t, "C", roots[0].Children[1].Text)
	assert.Equal(t, "D", roots[1].Text)
	assert.Equal(t, 4, outline.Count(roots))

	roots, err = s.Headings(ctx, "setup")
	require.NoError(t, err)
	require.Len(t, roots, 1)
	assert.Equal(t, "x", roots[0].ID)
	require.Len(t, roots[0].Children, 1)
	assert.Equal(t, "Linux", roots[0].Children[0].Text)

	_, err = s.Headings(ctx, "sheet")
	assert.ErrorIs(t, err, ErrUnsupportedDocument)

	_, err = s.Headings(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

package browser

import (
	"context"
	"io"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattsolo1/grove-docnav/pkg/models"
	"github.com/mattsolo1/grove-docnav/pkg/service"
	"github.com/mattsolo1/grove-docnav/pkg/store"
	"github.com/mattsolo1/grove-docnav/pkg/store/storetest"
)

func newTestSession(t *testing.T) *service.Session {
	t.Helper()
	st := storetest.NewMemory().
		Put(&models.Node{ID: models.RootID, Name: "Drive", Kind: models.KindFolder}).
		Put(&models.Node{ID: "guides", Name: "Guides", Kind: models.KindFolder, Parents: []string{models.RootID}}).
		Put(&models.Node{ID: "archive", Name: "Archive", Kind: models.KindFolder, Parents: []string{models.RootID}}).
		Put(&models.Node{ID: "intro", Name: "Intro", Kind: models.KindPlain, MimeType: "text/markdown", Parents: []string{"guides"}}).
		PutDocument(&store.Document{ID: "intro", MimeType: "text/markdown", Body: []byte("# One\n\n## Two\n")})

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	svc := service.NewWithStore(&service.Config{}, st, logrus.NewEntry(logger))
	session, err := svc.OpenSession(context.Background())
	require.NoError(t, err)
	t.Cleanup(session.Close)
	return session
}

func settle(t *testing.T, s *service.Session) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Wait(ctx))
}

func press(m Model, keys ...string) Model {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func ids(m Model) []string {
	var out []string
	for _, dn := range m.displayNodes {
		out = append(out, dn.node.ID)
	}
	return out
}

func TestBrowserNavigation(t *testing.T) {
	session := newTestSession(t)
	m := New(session, "Drive")

	assert.Equal(t, []string{"guides", "archive"}, ids(m))
	assert.Equal(t, 0, m.cursor)

	m = press(m, "j", "j", "j")
	assert.Equal(t, 1, m.cursor, "cursor stops at the last line")
	m = press(m, "g")
	assert.Equal(t, 0, m.cursor)

	m = press(m, "l")
	settle(t, session)
	next, _ := m.Update(sessionUpdatedMsg{})
	m = next.(Model)

	assert.Equal(t, []string{"guides", "archive"}, ids(m), "files stay hidden until toggled")
	m = press(m, "f")
	assert.Equal(t, []string{"guides", "intro", "archive"}, ids(m))
	assert.Equal(t, "├ ", m.displayNodes[0].prefix)
	assert.Equal(t, "│ └ ", m.displayNodes[1].prefix)
	assert.Equal(t, "└ ", m.displayNodes[2].prefix)

	m = press(m, "j", "h")
	assert.Equal(t, 0, m.cursor, "collapse on a file moves to its parent")
	m = press(m, "h")
	assert.Equal(t, []string{"guides", "archive"}, ids(m))
}

func TestBrowserSelectAndOutline(t *testing.T) {
	session := newTestSession(t)
	m := New(session, "Drive")

	m = press(m, "enter")
	settle(t, session)
	assert.Equal(t, "guides", session.ActiveID())

	next, _ := m.Update(sessionUpdatedMsg{})
	m = next.(Model)
	m = press(m, "enter")
	assert.Equal(t, []string{"guides", "intro", "archive"}, ids(m), "selecting the active folder shows its files")

	m = press(m, "j")
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("o")})
	m = next.(Model)
	require.NotNil(t, cmd)
	assert.Equal(t, "intro", m.outlineFor)

	next, _ = m.Update(cmd())
	m = next.(Model)
	require.NoError(t, m.outlineError)
	require.Len(t, m.outline, 1)
	assert.Equal(t, "One", m.outline[0].Text)
	assert.Contains(t, m.View(), "Two")
}

package browser

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mattsolo1/grove-docnav/pkg/outline"
	"github.com/mattsolo1/grove-docnav/pkg/service"
)

type sessionUpdatedMsg struct {
	update service.Update
}

type headingsLoadedMsg struct {
	id       string
	headings []*outline.Outline
	err      error
}

// waitForUpdate blocks until the session applies a fetch result.
func waitForUpdate(session *service.Session) tea.Cmd {
	return func() tea.Msg {
		return sessionUpdatedMsg{update: <-session.Updates()}
	}
}

func loadHeadingsCmd(session *service.Session, id string) tea.Cmd {
	return func() tea.Msg {
		headings, err := session.Headings(context.Background(), id)
		return headingsLoadedMsg{id: id, headings: headings, err: err}
	}
}

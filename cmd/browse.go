package cmd

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-docnav/internal/tui/browser"
	"github.com/mattsolo1/grove-docnav/pkg/render"
	"github.com/mattsolo1/grove-docnav/pkg/service"
)

// NewBrowseCmd creates the `docnav browse` command.
func NewBrowseCmd(svc **service.Service) *cobra.Command {
	var browseReveal string

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse the tree interactively",
		Long: `Launch an interactive tree browser. Folders load as they are expanded;
press o on a document to show its heading outline.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !render.IsTerminal(os.Stdout) {
				return fmt.Errorf("browse requires an interactive terminal")
			}

			s := *svc
			session, err := s.OpenSession(cmd.Context())
			if err != nil {
				return err
			}
			defer session.Close()

			if browseReveal != "" {
				session.Reveal(browseReveal)
			}

			model := browser.New(session, rootLabel(session))
			p := tea.NewProgram(model, tea.WithAltScreen())
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("error running TUI: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&browseReveal, "reveal", "", "Start with this node revealed")

	return cmd
}

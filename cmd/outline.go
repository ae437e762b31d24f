package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-docnav/pkg/outline"
	"github.com/mattsolo1/grove-docnav/pkg/render"
	"github.com/mattsolo1/grove-docnav/pkg/service"
)

type outlineEntry struct {
	Level    int             `json:"level"`
	ID       string          `json:"id"`
	Text     string          `json:"text"`
	Link     string          `json:"link,omitempty"`
	Children []*outlineEntry `json:"children,omitempty"`
}

func NewOutlineCmd(svc **service.Service) *cobra.Command {
	var (
		outlineJSON  bool
		outlineLinks bool
	)

	cmd := &cobra.Command{
		Use:   "outline <document-id>",
		Short: "Print a document's heading outline",
		Long: `Print the nested heading outline of an HTML or markdown document.

Examples:
  docnav outline guides/intro.md
  docnav outline guides/setup.html --json --links`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc
			ctx := cmd.Context()
			id := args[0]

			session := s.NewSession()
			defer session.Close()

			roots, err := session.Headings(ctx, id)
			if err != nil {
				return err
			}

			if outlineJSON {
				return outputJSON(toOutlineEntries(id, roots, outlineLinks))
			}

			title := id
			if node, err := s.Store.FetchNode(ctx, id); err == nil && node.Name != "" {
				title = node.Name
			}
			return render.Outline(os.Stdout, title, roots, render.Options{Styled: render.IsTerminal(os.Stdout)})
		},
	}

	cmd.Flags().BoolVar(&outlineJSON, "json", false, "Output in JSON format")
	cmd.Flags().BoolVar(&outlineLinks, "links", false, "Include editor links for each heading (JSON only)")

	return cmd
}

func toOutlineEntries(docID string, nodes []*outline.Outline, links bool) []*outlineEntry {
	entries := make([]*outlineEntry, 0, len(nodes))
	for _, n := range nodes {
		entry := &outlineEntry{
			Level:    n.Level,
			ID:       n.ID,
			Text:     n.Text,
			Children: toOutlineEntries(docID, n.Children, links),
		}
		if links && n.ID != "" {
			entry.Link = outline.ExternalLink(docID, n.ID)
		}
		entries = append(entries, entry)
	}
	return entries
}

package render

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	ltree "github.com/charmbracelet/lipgloss/tree"
	"github.com/mattn/go-isatty"

	"github.com/mattsolo1/grove-docnav/pkg/models"
	"github.com/mattsolo1/grove-docnav/pkg/outline"
	"github.com/mattsolo1/grove-docnav/pkg/tree"
)

// Options control how trees are printed.
type Options struct {
	Styled bool   // Use terminal colors
	All    bool   // Print collapsed folders' children too
	Active string // Highlighted node id
}

// IsTerminal reports whether f is an interactive terminal.
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

type styles struct {
	folder lipgloss.Style
	hidden lipgloss.Style
	link   lipgloss.Style
	file   lipgloss.Style
	active lipgloss.Style
	muted  lipgloss.Style
	failed lipgloss.Style
}

func newStyles(styled bool) styles {
	if !styled {
		plain := lipgloss.NewStyle()
		return styles{plain, plain, plain, plain, plain, plain, plain}
	}
	return styles{
		folder: lipgloss.NewStyle().Bold(true),
		hidden: lipgloss.NewStyle().Bold(true).Faint(true),
		link:   lipgloss.NewStyle().Foreground(lipgloss.Color("4")).Underline(true),
		file:   lipgloss.NewStyle(),
		active: lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Bold(true),
		muted:  lipgloss.NewStyle().Faint(true),
		failed: lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	}
}

// Tree prints a materialized tree below a root label.
func Tree(w io.Writer, rootLabel string, res tree.Result, opts Options) error {
	st := newStyles(opts.Styled)

	root := ltree.Root(st.folder.Render(rootLabel)).
		EnumeratorStyle(st.muted)

	switch res.Status {
	case tree.StatusUnknown:
		root.Child(st.muted.Render("loading..."))
	case tree.StatusFailed:
		root.Child(st.failed.Render("error: " + res.Err.Error()))
	default:
		if len(res.Nodes) == 0 {
			root.Child(st.muted.Render("(empty)"))
		}
		addNodes(root, res.Nodes, st, opts)
	}

	_, err := fmt.Fprintln(w, root.String())
	return err
}

func addNodes(parent *ltree.Tree, nodes []*tree.ViewNode, st styles, opts Options) {
	for _, n := range nodes {
		label := nodeLabel(n, st, opts)
		if n.IsLeaf() || !(n.Expanded || opts.All) {
			parent.Child(label)
			continue
		}
		sub := ltree.Root(label)
		addNodes(sub, n.Children, st, opts)
		if n.HasHiddenFiles {
			sub.Child(st.muted.Render("..."))
		}
		parent.Child(sub)
	}
}

func nodeLabel(n *tree.ViewNode, st styles, opts Options) string {
	var label string
	switch n.Item {
	case tree.TypeFolder:
		label = st.folder.Render(n.Label + "/")
	case tree.TypeHiddenFolder:
		label = st.hidden.Render(n.Label + "/")
	case tree.TypeLink:
		label = st.link.Render(n.Label) + st.muted.Render(" -> "+n.URL)
	default:
		label = st.file.Render(n.Label)
	}

	if n.ID == opts.Active && opts.Active != "" {
		label = st.active.Render("▶ ") + label
	}

	switch n.ChildState {
	case tree.ChildrenUnknown:
		if n.Expanded {
			label += st.muted.Render(" (loading)")
		} else if !opts.All {
			label += st.muted.Render(" +")
		}
	case tree.ChildrenFailed:
		label += st.failed.Render(" (error: " + n.Err + ")")
	case tree.ChildrenExpanded:
		if !n.Expanded && !opts.All {
			label += st.muted.Render(" +")
		}
	}
	return label
}

// Outline prints a heading outline, one heading per line, indented by depth.
func Outline(w io.Writer, title string, roots []*outline.Outline, opts Options) error {
	st := newStyles(opts.Styled)

	root := ltree.Root(st.folder.Render(title)).
		EnumeratorStyle(st.muted)
	if len(roots) == 0 {
		root.Child(st.muted.Render("(no headings)"))
	}
	addHeadings(root, roots, st)

	_, err := fmt.Fprintln(w, root.String())
	return err
}

func addHeadings(parent *ltree.Tree, nodes []*outline.Outline, st styles) {
	for _, n := range nodes {
		label := n.Text
		if n.ID != "" {
			label += st.muted.Render(" #" + n.ID)
		}
		if len(n.Children) == 0 {
			parent.Child(label)
			continue
		}
		sub := ltree.Root(label)
		addHeadings(sub, n.Children, st)
		parent.Child(sub)
	}
}

// Entry is a row of a folder listing.
type Entry struct {
	Name     string
	Kind     models.Kind
	URL      string
	Modified string
	CanEdit  bool
}

// Listing prints folder entries in the given display mode. DisplayHide
// prints only a summary line.
func Listing(w io.Writer, entries []Entry, mode models.DisplayMode) error {
	switch mode {
	case models.DisplayHide:
		_, err := fmt.Fprintf(w, "Folder Contents (%d)\n", len(entries))
		return err
	case models.DisplayList:
		for _, e := range entries {
			name := e.Name
			if e.URL != "" {
				name += " <" + e.URL + ">"
			}
			if _, err := fmt.Fprintf(w, "  %s\n", name); err != nil {
				return err
			}
		}
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tKIND\tMODIFIED\tEDIT")
	fmt.Fprintln(tw, "----\t----\t--------\t----")
	for _, e := range entries {
		edit := ""
		if e.CanEdit {
			edit = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", truncateString(e.Name, 40), kindLabel(e.Kind), e.Modified, edit)
	}
	return tw.Flush()
}

func kindLabel(k models.Kind) string {
	switch k {
	case models.KindFolder:
		return "folder"
	case models.KindFolderShortcut:
		return "shortcut"
	case models.KindLink:
		return "link"
	}
	return "document"
}

func truncateString(s string, maxLen int) string {
	if len([]rune(s)) <= maxLen {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:maxLen-3])) + "..."
}

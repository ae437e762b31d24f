package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-docnav/pkg/navstate"
	"github.com/mattsolo1/grove-docnav/pkg/render"
	"github.com/mattsolo1/grove-docnav/pkg/service"
	"github.com/mattsolo1/grove-docnav/pkg/tree"
)

type treeOutput struct {
	Root   string           `json:"root"`
	Status string           `json:"status"`
	Active string           `json:"active,omitempty"`
	Reveal string           `json:"reveal,omitempty"`
	Error  string           `json:"error,omitempty"`
	Nodes  []*tree.ViewNode `json:"nodes"`
}

func NewTreeCmd(svc **service.Service) *cobra.Command {
	var (
		treeReveal    string
		treeExpand    []string
		treeShowFiles []string
		treeDepth     int
		treeAll       bool
		treeJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the navigation tree",
		Long: `Print the folder tree of the store. Folders are collapsed unless expanded
with --expand, --depth or --reveal; files are listed only for folders named
with --show-files.

Examples:
  docnav tree                          # Top-level folders
  docnav tree --depth 2                # Expand two levels
  docnav tree --reveal guides/intro.md # Expand down to a document
  docnav tree --expand guides --show-files guides --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc
			ctx := cmd.Context()

			session, err := s.OpenSession(ctx)
			if err != nil {
				return err
			}
			defer session.Close()

			// Expand in order so a folder listed after its parent is known by then.
			for _, id := range treeExpand {
				if session.Node(id) == nil && id != session.RootID() {
					s.Logger.WithField("id", id).Warn("Cannot expand a folder that has not been loaded; expand its parent first")
					continue
				}
				session.ToggleExpand(id, true)
				if err := session.Wait(ctx); err != nil {
					return err
				}
			}
			for _, id := range treeShowFiles {
				session.ToggleShowFiles(id)
			}
			if err := expandToDepth(ctx, session, treeDepth); err != nil {
				return err
			}

			if treeReveal != "" {
				session.Reveal(treeReveal)
				if err := session.Wait(ctx); err != nil {
					return err
				}
				if state := session.RevealState(); state != navstate.RevealSatisfied {
					s.Logger.WithField("id", treeReveal).WithField("state", state.String()).Warn("Could not reveal node")
				}
			}

			res := session.Tree()
			if treeJSON {
				out := treeOutput{
					Root:   session.RootID(),
					Status: res.Status.String(),
					Active: session.ActiveID(),
					Nodes:  res.Nodes,
				}
				if treeReveal != "" {
					out.Reveal = session.RevealState().String()
				}
				if res.Err != nil {
					out.Error = res.Err.Error()
				}
				return outputJSON(out)
			}

			return render.Tree(os.Stdout, rootLabel(session), res, render.Options{
				Styled: render.IsTerminal(os.Stdout),
				All:    treeAll,
				Active: session.ActiveID(),
			})
		},
	}

	cmd.Flags().StringVar(&treeReveal, "reveal", "", "Expand the tree down to this node and mark it active")
	cmd.Flags().StringSliceVarP(&treeExpand, "expand", "e", nil, "Folder ids to expand")
	cmd.Flags().StringSliceVarP(&treeShowFiles, "show-files", "f", nil, "Folder ids whose files are listed")
	cmd.Flags().IntVarP(&treeDepth, "depth", "d", 0, "Expand every folder down to this depth")
	cmd.Flags().BoolVar(&treeAll, "all", false, "Print children of collapsed folders that are already loaded")
	cmd.Flags().BoolVar(&treeJSON, "json", false, "Output in JSON format")

	return cmd
}

// expandToDepth expands every visible folder level by level.
func expandToDepth(ctx context.Context, session *service.Session, depth int) error {
	for level := 0; level < depth; level++ {
		var folders []string
		collectFolders(session.Tree().Nodes, level, &folders)
		if len(folders) == 0 {
			return nil
		}
		for _, id := range folders {
			session.ToggleExpand(id, true)
		}
		if err := session.Wait(ctx); err != nil {
			return err
		}
	}
	return nil
}

func collectFolders(nodes []*tree.ViewNode, level int, out *[]string) {
	for _, n := range nodes {
		if n.ChildState == tree.ChildrenNone {
			continue
		}
		if level == 0 {
			if !n.Expanded {
				*out = append(*out, n.ID)
			}
			continue
		}
		collectFolders(n.Children, level-1, out)
	}
}

func rootLabel(session *service.Session) string {
	if root := session.Node(session.RootID()); root != nil && root.Name != "" {
		return root.Name
	}
	return session.RootID()
}

func outputJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return nil
}

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-docnav/pkg/render"
	"github.com/mattsolo1/grove-docnav/pkg/service"
)

func NewFolderCmd(svc **service.Service) *cobra.Command {
	var folderJSON bool

	cmd := &cobra.Command{
		Use:   "folder [folder-id]",
		Short: "List a folder's contents",
		Long: `List the children of a folder the way its content page shows them. The
folder's displayInContent setting picks a list, a table or a collapsed
summary; a README child is printed alongside.

Examples:
  docnav folder                # The root folder
  docnav folder guides --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc
			ctx := cmd.Context()

			session, err := s.OpenSession(ctx)
			if err != nil {
				return err
			}
			defer session.Close()

			id := session.RootID()
			if len(args) == 1 {
				id = args[0]
			}

			contents, err := session.FolderContents(ctx, id)
			if err != nil {
				return err
			}

			if folderJSON {
				return outputJSON(contents)
			}

			fmt.Printf("%s (%s)\n", contents.Folder.Name, contents.Display)
			if contents.OpenInNewWindow {
				fmt.Println("Reached through a shortcut; not part of the navigation tree.")
			}
			fmt.Println()

			entries := make([]render.Entry, 0, len(contents.Entries))
			for _, e := range contents.Entries {
				entries = append(entries, render.Entry{
					Name:     e.Name,
					Kind:     e.Kind,
					URL:      e.URL,
					Modified: e.Modified,
					CanEdit:  e.CanEdit,
				})
			}
			if err := render.Listing(os.Stdout, entries, contents.Display); err != nil {
				return err
			}

			if contents.Readme != nil {
				fmt.Printf("\nREADME: %s", contents.Readme.ID)
				if contents.Readme.CanEdit {
					fmt.Print(" (editable)")
				}
				fmt.Println()
				roots, err := session.Headings(ctx, contents.Readme.ID)
				if err != nil {
					s.Logger.WithError(err).Debug("README has no outline")
					return nil
				}
				return render.Outline(os.Stdout, contents.Readme.Name, roots, render.Options{Styled: render.IsTerminal(os.Stdout)})
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&folderJSON, "json", false, "Output in JSON format")

	return cmd
}

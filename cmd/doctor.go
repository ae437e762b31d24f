package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-docnav/pkg/service"
)

func NewDoctorCmd(svc **service.Service) *cobra.Command {
	var (
		doctorFix   bool
		doctorLimit int
		doctorJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the store for navigation problems",
		Long: `The doctor command walks the store from the root and reports problems
that show up while navigating.

Issues it can detect:
- Folders whose listing cannot be read
- Folder descriptions with unreadable display settings
- Shortcuts that do not lead to a folder
- Shortcuts that point back at one of their own ancestors

With --fix, the local cache is cleared so the next run refetches everything.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc
			ctx := cmd.Context()

			report, err := s.Diagnose(ctx, doctorLimit)
			if err != nil {
				return fmt.Errorf("diagnose: %w", err)
			}

			if doctorJSON {
				return outputJSON(report)
			}

			fmt.Println("🏥 Running docnav doctor...")
			fmt.Println()
			fmt.Printf("Walked %d folder(s) and %d document(s)", report.Folders, report.Documents)
			if report.Truncated {
				fmt.Printf(" (stopped at --limit %d)", doctorLimit)
			}
			fmt.Println()
			fmt.Println()

			for _, issue := range report.Issues {
				fmt.Printf("❗ [%s] %s: %s\n", issue.Kind, issue.ID, issue.Message)
			}
			if len(report.Issues) > 0 {
				fmt.Println()
			}

			fixed := 0
			if cache := s.Cache(); cache != nil {
				nodes, listings, err := cache.Stats(ctx)
				if err != nil {
					return fmt.Errorf("cache stats: %w", err)
				}
				fmt.Printf("Cache: %d node(s), %d listing(s)\n", nodes, listings)
				if doctorFix {
					if err := cache.Clear(ctx); err != nil {
						return fmt.Errorf("clear cache: %w", err)
					}
					fmt.Println("   ✅ Cleared cache")
					fixed++
				}
				fmt.Println()
			}

			// Summary
			if len(report.Issues) == 0 {
				fmt.Println("✨ No issues found! The tree is healthy.")
			} else {
				fmt.Printf("📊 Summary: Found %d issue(s)", len(report.Issues))
				if doctorFix {
					fmt.Printf(", fixed %d", fixed)
				}
				fmt.Println()
				fmt.Println("💡 These require editing the store itself")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&doctorFix, "fix", false, "Clear the local cache")
	cmd.Flags().IntVar(&doctorLimit, "limit", 1000, "Maximum number of folders to walk (0 for no limit)")
	cmd.Flags().BoolVar(&doctorJSON, "json", false, "Output in JSON format")

	return cmd
}

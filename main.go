package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-docnav/cmd"
	"github.com/mattsolo1/grove-docnav/cmd/config"
	"github.com/mattsolo1/grove-docnav/pkg/service"
)

var svc *service.Service

func main() {
	cobra.OnInitialize(config.InitConfig)

	rootCmd := &cobra.Command{
		Use:   "docnav",
		Short: "Navigate a remote file store as a lazily loaded tree",
		Long: `docnav browses a file store as a tree that loads folders on demand,
reveals deep links by fetching their ancestors, and prints the heading
outline of HTML and markdown documents.`,
		SilenceUsage: true,
	}
	config.AddGlobalFlags(rootCmd)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// This runs once before any subcommand
		if cmd.Name() == "version" {
			return nil
		}
		var err error
		svc, err = config.InitService()
		if err != nil {
			return fmt.Errorf("failed to initialize service: %w", err)
		}
		return nil
	}
	rootCmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		if svc == nil {
			return nil
		}
		return svc.Close()
	}

	// Add subcommands
	rootCmd.AddCommand(cmd.NewTreeCmd(&svc))
	rootCmd.AddCommand(cmd.NewOutlineCmd(&svc))
	rootCmd.AddCommand(cmd.NewFolderCmd(&svc))
	rootCmd.AddCommand(cmd.NewBrowseCmd(&svc))
	rootCmd.AddCommand(cmd.NewDoctorCmd(&svc))
	rootCmd.AddCommand(cmd.NewVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

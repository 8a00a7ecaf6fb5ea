package main

import (
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/figdex/internal/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version info",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("figdex %s (%s, %s)\n", version.Version, version.Commit, version.Date)
		},
	}
}

package main

import (
	"github.com/spf13/cobra"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the hively version",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("hively %s\n", version)
		},
	}
}

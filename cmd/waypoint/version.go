package main

import (
	"fmt"

	"github.com/aretw0/waypoint"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of Waypoint",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Waypoint v%s\n", waypoint.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

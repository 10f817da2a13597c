package main

import (
	"fmt"

	"github.com/spf13/cobra"

	forager "github.com/aretw0/forager"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of forager",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("forager version %s\n", forager.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

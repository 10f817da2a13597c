package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/forager/internal/presentation/graph"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Print the execution plan as a Mermaid flowchart",
	Run: func(cmd *cobra.Command, args []string) {
		engine, _, _, err := buildEngine(cmd)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Print(graph.GenerateMermaid(engine.Plan()))
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}

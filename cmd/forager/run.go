package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/forager/internal/presentation/tui"
	"github.com/aretw0/forager/pkg/domain"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [query]",
	Short: "Run a one-shot recommendation",
	Long:  `Runs the full pipeline for a single query and renders the result.`,
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		query := strings.Join(args, " ")
		jsonMode, _ := cmd.Flags().GetBool("json")
		topK, _ := cmd.Flags().GetInt("top-k")

		engine, _, logger, err := buildEngine(cmd)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		record, err := engine.Recommend(context.Background(), query, domain.RunContext{TopK: topK})
		if err != nil {
			logger.Error("run failed", "err", err)
			os.Exit(1)
		}

		if jsonMode {
			out, _ := json.MarshalIndent(record, "", "  ")
			fmt.Println(string(out))
			return
		}

		tui.PrintBanner()
		render := tui.NewRenderer()
		out, err := render(tui.RenderReport(query, &record.Envelope))
		if err != nil {
			// Fall back to raw markdown if the terminal renderer chokes.
			out = tui.RenderReport(query, &record.Envelope)
		}
		fmt.Println(out)
		fmt.Printf("Session: %s\n", record.SessionID)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("json", false, "Print the full session record as JSON")
	runCmd.Flags().IntP("top-k", "k", 0, "Maximum offers to consider")
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/aretw0/espalier/internal/presentation/tui"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/spf13/cobra"
)

var reviewCmd = &cobra.Command{
	Use:   "review <file>",
	Short: "Run the code-review workflow against a local file",
	Long:  `Runs the built-in code-review graph against the given source file and prints the resulting report.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			os.Exit(1)
		}

		code, err := os.ReadFile(args[0])
		if err != nil {
			fmt.Printf("Error reading %s: %v\n", args[0], err)
			os.Exit(1)
		}

		svc, err := buildService(cfg, newLogger(cfg))
		if err != nil {
			fmt.Printf("Error initializing espalier: %v\n", err)
			os.Exit(1)
		}

		record, err := svc.Engine.Run(context.Background(), svc.DefaultGraphID, domain.SharedState{
			"code": string(code),
		})
		if err != nil {
			fmt.Printf("Run failed: %v\n", err)
			os.Exit(1)
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			out, err := json.MarshalIndent(record, "", "  ")
			if err != nil {
				fmt.Printf("Error encoding record: %v\n", err)
				os.Exit(1)
			}
			fmt.Println(string(out))
			return
		}

		report := tui.RunReport(record)
		render := tui.NewRenderer()
		rendered, err := render(report)
		if err != nil {
			// Fall back to plain markdown when the terminal renderer
			// cannot initialize.
			fmt.Println(report)
			return
		}
		fmt.Print(rendered)

		if record.Status != domain.RunCompleted {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(reviewCmd)
	reviewCmd.Flags().Bool("json", false, "Print the raw run record as JSON")
}

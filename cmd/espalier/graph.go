package main

import (
	"context"
	"fmt"
	"os"

	graphPresenter "github.com/aretw0/espalier/internal/presentation/graph"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Print the default graph as a Mermaid flowchart",
	Long:  `Prints the built-in code-review graph in Mermaid syntax, suitable for pasting into documentation or a Mermaid live editor.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			os.Exit(1)
		}

		svc, err := buildService(cfg, newLogger(cfg))
		if err != nil {
			fmt.Printf("Error initializing espalier: %v\n", err)
			os.Exit(1)
		}

		definition, err := svc.Engine.GetGraph(context.Background(), svc.DefaultGraphID)
		if err != nil {
			fmt.Printf("Error loading graph: %v\n", err)
			os.Exit(1)
		}

		fmt.Print(graphPresenter.GenerateMermaid(definition, nil))
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "auraflow",
	Short: "AuraFlow runs document-aware LLM workflows",
	Long: `AuraFlow executes visual workflows of user query, knowledge base, LLM and
output nodes. Documents are extracted, chunked, embedded and stored per workflow
so later chat requests can retrieve them.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

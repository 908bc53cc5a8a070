package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Ask a question against a stored workflow collection",
	RunE: func(cmd *cobra.Command, args []string) error {
		workflowID, _ := cmd.Flags().GetString("workflow-id")
		query, _ := cmd.Flags().GetString("query")

		d, err := loadDeps(cmd.Context(), requirePersistentStore)
		if err != nil {
			return err
		}
		defer d.Close()

		p := d.chatDefaults()
		if cmd.Flags().Changed("model") {
			p.Model, _ = cmd.Flags().GetString("model")
		}
		if cmd.Flags().Changed("temperature") {
			p.Temperature, _ = cmd.Flags().GetFloat64("temperature")
		}

		answer, err := d.engine.Chat(cmd.Context(), workflowID, query, p)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Answer:", answer)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().String("workflow-id", "", "Workflow (stack) id to retrieve from")
	chatCmd.Flags().StringP("query", "q", "", "Question to ask")
	chatCmd.Flags().String("model", "", "Model override (gpt-* or gemini-*)")
	chatCmd.Flags().Float64("temperature", 0, "Sampling temperature override")
	chatCmd.MarkFlagRequired("workflow-id")
	chatCmd.MarkFlagRequired("query")
}

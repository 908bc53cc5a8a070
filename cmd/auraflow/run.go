package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muzammilx07/AuraFlow/internal/graph"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute one workflow from JSON files and print the result",
	RunE: func(cmd *cobra.Command, args []string) error {
		workflowID, _ := cmd.Flags().GetString("workflow-id")
		nodesPath, _ := cmd.Flags().GetString("nodes")
		edgesPath, _ := cmd.Flags().GetString("edges")
		docPath, _ := cmd.Flags().GetString("file")

		req := graph.Request{WorkflowID: workflowID}
		if err := readJSONFile(nodesPath, &req.Nodes); err != nil {
			return err
		}
		if edgesPath != "" {
			if err := readJSONFile(edgesPath, &req.Edges); err != nil {
				return err
			}
		}
		if docPath != "" {
			f, err := os.Open(docPath)
			if err != nil {
				return fmt.Errorf("open document: %w", err)
			}
			defer f.Close()
			req.Document = f
		}

		d, err := loadDeps(cmd.Context())
		if err != nil {
			return err
		}
		defer d.Close()

		res, err := d.engine.Execute(cmd.Context(), req)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	},
}

func readJSONFile(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("workflow-id", "", "Workflow (stack) id the document is stored under")
	runCmd.Flags().String("nodes", "", "Path to a JSON array of nodes")
	runCmd.Flags().String("edges", "", "Path to a JSON array of edges")
	runCmd.Flags().String("file", "", "Document to attach to knowledge base nodes")
	runCmd.MarkFlagRequired("workflow-id")
	runCmd.MarkFlagRequired("nodes")
}

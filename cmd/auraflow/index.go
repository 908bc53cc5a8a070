package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/muzammilx07/AuraFlow/internal/ingestion"
)

// indexCmd stores a folder of documents as one collection, the same way a
// knowledgeBase node stores an uploaded file.
var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Extract, embed and store every document under a folder",
	RunE: func(cmd *cobra.Command, args []string) error {
		workflowID, _ := cmd.Flags().GetString("workflow-id")
		root, _ := cmd.Flags().GetString("path")

		files, err := ingestion.DiscoverDocuments(root)
		if err != nil {
			return fmt.Errorf("load files: %w", err)
		}
		if len(files) == 0 {
			return fmt.Errorf("no documents found under %s", root)
		}

		d, err := loadDeps(cmd.Context(), requirePersistentStore)
		if err != nil {
			return err
		}
		defer d.Close()

		var texts []string
		for _, f := range files {
			text, err := d.extractor.ExtractFile(cmd.Context(), f)
			if err != nil {
				d.log.Warn("index", "skip file", map[string]interface{}{"file": f, "error": err.Error()})
				continue
			}
			d.log.Info("index", "extracted", map[string]interface{}{"file": f, "chars": len(text)})
			texts = append(texts, text)
		}

		chunks, err := d.engine.IngestText(cmd.Context(), workflowID, strings.Join(texts, "\n\n"))
		if err != nil {
			return err
		}
		failed := 0
		for _, c := range chunks {
			if c.EmbeddingError != "" {
				failed++
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d files into %d chunks (%d without embeddings).\n", len(texts), len(chunks), failed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)

	indexCmd.Flags().String("workflow-id", "", "Workflow (stack) id to store the collection under")
	indexCmd.Flags().String("path", "./data", "Folder to index")
	indexCmd.MarkFlagRequired("workflow-id")
}

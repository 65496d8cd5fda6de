// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/brief-engine/internal/knowledge"
	"github.com/pdiddy/brief-engine/internal/pipeline"
)

var knowledgeCmd = &cobra.Command{
	Use:   "knowledge",
	Short: "Inspect the campaign knowledge base (retrieve, list, export)",
	Long: `Knowledge loads the batch files in the knowledge directory (.json,
.yaml, .yml, .toml, .db, .sqlite) in filename order and answers queries
against them with the same ranking the pipeline uses.`,
}

// --- retrieve subcommand ---

var knowledgeRetrieveCmd = &cobra.Command{
	Use:   "retrieve [query]",
	Short: "Rank campaigns against a free-text query",
	Long: `Retrieve scores every campaign by how often the query terms occur in
it, with extra weight for matches in the proposition and insight, and prints
the top results. An empty query returns campaigns in load order.`,
	RunE: runKnowledgeRetrieve,
}

func runKnowledgeRetrieve(cmd *cobra.Command, args []string) error {
	store, err := loadStore(cmd)
	if err != nil {
		return err
	}

	limit, _ := cmd.Flags().GetInt("limit")
	award, _ := cmd.Flags().GetString("award")
	q := knowledge.Query{Text: strings.Join(args, " "), Limit: limit, Award: award}

	out := cmd.OutOrStdout()
	if asContext, _ := cmd.Flags().GetBool("context"); asContext {
		fmt.Fprintln(out, store.RetrieveContext(q))
		return nil
	}

	results := store.Rank(q)
	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return writeJSON(out, results)
	}
	showScores, _ := cmd.Flags().GetBool("scores")
	return formatRetrieveOutput(out, results, showScores)
}

func formatRetrieveOutput(out io.Writer, results []knowledge.ScoredResult, showScores bool) error {
	if len(results) == 0 {
		fmt.Fprintln(out, "No results found.")
		return nil
	}

	fmt.Fprintf(out, "%-4s  %-30s  %-20s  %-4s  %-18s", "Rank", "Campaign", "Brand", "Year", "Award")
	if showScores {
		fmt.Fprintf(out, "  %s", "Score")
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, strings.Repeat("-", 90))

	for i, r := range results {
		fmt.Fprintf(out, "%-4d  %-30s  %-20s  %-4d  %-18s",
			i+1, truncate(r.Name, 30), truncate(r.Brand, 20), r.Year, truncate(r.Award, 18))
		if showScores {
			fmt.Fprintf(out, "  %d", r.Score)
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintf(out, "\n%d results\n", len(results))
	return nil
}

// --- list subcommand ---

var knowledgeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List campaigns, propositions, or insights",
	RunE:  runKnowledgeList,
}

func runKnowledgeList(cmd *cobra.Command, args []string) error {
	store, err := loadStore(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	what, _ := cmd.Flags().GetString("show")
	switch what {
	case "campaigns", "":
		for _, c := range store.All() {
			fmt.Fprintf(out, "%s (%s, %d) - %s\n", c.Name, c.Brand, c.Year, c.Award)
		}
	case "propositions":
		for _, p := range store.Propositions() {
			fmt.Fprintln(out, p)
		}
	case "insights":
		for _, s := range store.Insights() {
			fmt.Fprintln(out, s)
		}
	default:
		return fmt.Errorf("unsupported listing %q: use campaigns, propositions, or insights", what)
	}
	return nil
}

// --- export subcommand ---

var knowledgeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the loaded knowledge base to YAML, JSON, or SQLite",
	Long: `Export writes every loaded campaign, in load order, to a single file.
The SQLite export can be dropped back into the knowledge directory as a batch.`,
	RunE: runKnowledgeExport,
}

func runKnowledgeExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	path, _ := cmd.Flags().GetString("output")

	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	store, err := knowledge.LoadDir(cmd.Context(), cfg.KnowledgeBase)
	if err != nil {
		return err
	}

	if path == "" {
		path = defaultExportPath(cfg.Output.OutputDir, format)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating export directory: %w", err)
	}

	switch format {
	case "yaml", "":
		err = store.ExportYAML(path)
	case "json":
		err = store.ExportJSON(path)
	case "sqlite":
		err = store.ExportSQLite(cmd.Context(), path)
	default:
		return fmt.Errorf("unsupported format %q: use yaml, json, or sqlite", format)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d campaigns to %s\n", store.Len(), path)
	return nil
}

// --- shared helpers ---

// defaultExportPath places an export in the output directory, named
// knowledge-export with an extension for format.
func defaultExportPath(outputDir, format string) string {
	if outputDir == "" {
		outputDir = pipeline.DefaultOutputDir
	}
	ext := format
	switch format {
	case "", "yaml":
		ext = "yaml"
	case "sqlite":
		ext = "db"
	}
	return filepath.Join(outputDir, "knowledge-export."+ext)
}

func loadStore(cmd *cobra.Command) (*knowledge.Store, error) {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return nil, err
	}
	return knowledge.LoadDir(cmd.Context(), cfg.KnowledgeBase)
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func init() {
	knowledgeRetrieveCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	knowledgeRetrieveCmd.Flags().String("award", "", "only campaigns whose award contains this text (e.g. gold)")
	knowledgeRetrieveCmd.Flags().Bool("scores", false, "show relevance scores")
	knowledgeRetrieveCmd.Flags().Bool("json", false, "output results as JSON")
	knowledgeRetrieveCmd.Flags().Bool("context", false, "print the reference block a pipeline stage would receive")

	knowledgeListCmd.Flags().String("show", "campaigns", "what to list: campaigns, propositions, or insights")

	knowledgeExportCmd.Flags().String("format", "yaml", "export format: yaml, json, or sqlite")
	knowledgeExportCmd.Flags().String("output", "", "output file (default <output-dir>/knowledge-export.<ext>)")

	knowledgeCmd.AddCommand(knowledgeRetrieveCmd)
	knowledgeCmd.AddCommand(knowledgeListCmd)
	knowledgeCmd.AddCommand(knowledgeExportCmd)

	rootCmd.AddCommand(knowledgeCmd)
}

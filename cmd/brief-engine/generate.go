// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/brief-engine/internal/pipeline"
	"github.com/pdiddy/brief-engine/pkg/types"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a creative brief for a brand and campaign goal",
	Long: `Generate runs the five-stage pipeline for one brief and writes the
result to the output directory as brief_<brand>_<timestamp>.md.

Without --stream the final reviewed brief is printed when the run finishes.
With --stream each stage's progress and output is printed as it completes.`,
	Example: `  brief-engine generate --brand "Acme Shoes" --goal "Increase youth awareness" --industry Footwear
  brief-engine generate --brand Acme --goal "Launch" --stream`,
	RunE: runGenerate,
}

func runGenerate(cmd *cobra.Command, args []string) error {
	in := briefInputFromFlags(cmd)
	if err := pipeline.ValidateInput(in); err != nil {
		return err
	}

	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}

	orch, _, err := buildOrchestrator(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	if stream, _ := cmd.Flags().GetBool("stream"); stream {
		return printEvents(orch.Stream(cmd.Context(), in), cmd.OutOrStdout(), cmd.ErrOrStderr())
	}

	res, err := orch.Run(cmd.Context(), in)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), res.Review)
	fmt.Fprintf(cmd.ErrOrStderr(), "Brief saved to %s\n", res.Path)
	return nil
}

// printEvents writes stage outputs to out and progress to progress until the
// terminal event. An error event is returned as an error.
func printEvents(events <-chan pipeline.Event, out, progress io.Writer) error {
	for e := range events {
		switch e.Type {
		case pipeline.EventStatus:
			fmt.Fprintf(progress, "[%s] %s\n", e.Agent, e.Message)
		case pipeline.EventResult:
			fmt.Fprintf(out, "## %s\n\n%s\n\n", e.Agent.Title(), e.Content)
		case pipeline.EventComplete:
			fmt.Fprintf(progress, "Brief saved to %s\n", e.Filepath)
			return nil
		case pipeline.EventError:
			return errors.New(e.Message)
		}
	}
	return errors.New("event stream ended without a result")
}

func briefInputFromFlags(cmd *cobra.Command) types.BriefInput {
	brand, _ := cmd.Flags().GetString("brand")
	goal, _ := cmd.Flags().GetString("goal")
	industry, _ := cmd.Flags().GetString("industry")
	notes, _ := cmd.Flags().GetString("context")
	return types.BriefInput{Subject: brand, Goal: goal, Sector: industry, Notes: notes}
}

func init() {
	generateCmd.Flags().String("brand", "", "product, brand, or company (required)")
	generateCmd.Flags().String("goal", "", "campaign goal (required)")
	generateCmd.Flags().String("industry", "", "industry or category")
	generateCmd.Flags().String("context", "", "additional context for the brief")
	generateCmd.Flags().Bool("stream", false, "print each stage as it completes")
	generateCmd.Flags().String("model", "", "override the generation model")

	viper.BindPFlag("generation.model", generateCmd.Flags().Lookup("model"))

	rootCmd.AddCommand(generateCmd)
}

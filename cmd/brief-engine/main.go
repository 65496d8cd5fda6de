// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the brief-engine CLI: generate creative
// briefs, query the campaign knowledge base, and serve the pipeline over HTTP.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/brief-engine/internal/generate"
	"github.com/pdiddy/brief-engine/internal/knowledge"
	"github.com/pdiddy/brief-engine/internal/logging"
	"github.com/pdiddy/brief-engine/internal/pipeline"
	"github.com/pdiddy/brief-engine/internal/secrets"
	"github.com/pdiddy/brief-engine/internal/server"
	"github.com/pdiddy/brief-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// legacyEnv maps config keys to the environment names earlier deployments used.
var legacyEnv = map[string]string{
	"generation.api_key":  "NVIDIA_API_KEY",
	"generation.model":    "NIM_MODEL",
	"generation.base_url": "NIM_BASE_URL",
	"output.output_dir":   "OUTPUT_DIR",
}

// rootCmd is the base command for the brief-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "brief-engine",
	Short: "Generate IPA-standard creative briefs grounded in award-winning campaigns",
	Long: `brief-engine turns a brand and a campaign goal into a creative brief.
Five generation stages (research, strategy, creative, compile, review) run in
order; each draws reference material from a knowledge base of award-winning
campaigns. The finished brief is written to the output directory as Markdown.

Use generate for a single brief, knowledge to inspect the knowledge base, and
serve to expose the pipeline over HTTP.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		levelFlag, _ := cmd.Flags().GetString("log-level")
		level, err := logging.ParseLevel(levelFlag)
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("log-format")
		logging.Init(level, format, os.Stderr)

		secretsDir, _ := cmd.Flags().GetString("secrets-dir")
		s, err := secrets.Load(secretsDir, logging.New("secrets"))
		if err != nil {
			return err
		}
		if applied := s.Apply(viper.GetViper(), secrets.Bindings); len(applied) > 0 {
			sort.Strings(applied)
			logging.New("secrets").Debug("loaded secrets", "names", applied)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./brief-engine.yaml or ~/.config/brief-engine/brief-engine.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "text", "log format: text or json")
	rootCmd.PersistentFlags().String("secrets-dir", secrets.DefaultDir, "directory of secret files (nvidia-api-key)")
	rootCmd.PersistentFlags().String("knowledge-dir", "knowledge", "directory of campaign batch files")
	rootCmd.PersistentFlags().String("output-dir", pipeline.DefaultOutputDir, "directory for generated briefs")

	viper.BindPFlag("knowledge_base.knowledge_dir", rootCmd.PersistentFlags().Lookup("knowledge-dir"))
	viper.BindPFlag("output.output_dir", rootCmd.PersistentFlags().Lookup("output-dir"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("brief-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "brief-engine"))
		}
	}

	setDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// setDefaults registers every config key so environment overrides apply on
// Unmarshal, and binds the legacy environment names.
func setDefaults(v *viper.Viper) {
	v.SetDefault("generation.model", generate.DefaultModel)
	v.SetDefault("generation.base_url", generate.DefaultBaseURL)
	v.SetDefault("generation.api_key", "")
	v.SetDefault("generation.max_tokens", 2048)
	v.SetDefault("generation.timeout", "0s")
	v.SetDefault("knowledge_base.knowledge_dir", "knowledge")
	v.SetDefault("knowledge_base.default_limit", knowledge.DefaultLimit)
	v.SetDefault("output.output_dir", pipeline.DefaultOutputDir)
	v.SetDefault("server.addr", server.DefaultAddr)

	v.SetEnvPrefix("BRIEF_ENGINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, env := range legacyEnv {
		prefixed := "BRIEF_ENGINE_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		v.BindEnv(key, prefixed, env)
	}
}

// loadConfig decodes the merged configuration.
func loadConfig(v *viper.Viper) (types.BriefConfig, error) {
	var cfg types.BriefConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding configuration: %w", err)
	}
	return cfg, nil
}

// buildOrchestrator loads the knowledge store and wires the generation
// backend into a pipeline orchestrator.
func buildOrchestrator(ctx context.Context, cfg types.BriefConfig) (*pipeline.Orchestrator, *knowledge.Store, error) {
	store, err := knowledge.LoadDir(ctx, cfg.KnowledgeBase)
	if err != nil {
		return nil, nil, err
	}
	logging.New("knowledge").Info("knowledge base loaded", "campaigns", store.Len(), "dir", cfg.KnowledgeBase.KnowledgeDir)

	backend, err := generate.NewNIMBackend(cfg.Generation, logging.New("generate"))
	if err != nil {
		return nil, nil, err
	}

	orch := pipeline.New(store, backend, cfg.Output, pipeline.WithLogger(logging.New("pipeline")))
	return orch, store, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

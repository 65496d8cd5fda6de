// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/brief-engine/internal/generate"
	"github.com/pdiddy/brief-engine/internal/pipeline"
)

func TestLoadConfigDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg, err := loadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, generate.DefaultModel, cfg.Generation.Model)
	assert.Equal(t, generate.DefaultBaseURL, cfg.Generation.BaseURL)
	assert.Equal(t, 2048, cfg.Generation.MaxTokens)
	assert.Equal(t, "knowledge", cfg.KnowledgeBase.KnowledgeDir)
	assert.Equal(t, 3, cfg.KnowledgeBase.DefaultLimit)
	assert.Equal(t, "output", cfg.Output.OutputDir)
	assert.Equal(t, ":5000", cfg.Server.Addr)
}

func TestLoadConfigLegacyEnv(t *testing.T) {
	t.Setenv("NVIDIA_API_KEY", "nvapi-legacy")
	t.Setenv("NIM_MODEL", "meta/llama-3.3-70b-instruct")
	t.Setenv("OUTPUT_DIR", "/tmp/briefs")
	t.Setenv("BRIEF_ENGINE_SERVER_ADDR", ":8080")

	v := viper.New()
	setDefaults(v)

	cfg, err := loadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, "nvapi-legacy", cfg.Generation.APIKey)
	assert.Equal(t, "meta/llama-3.3-70b-instruct", cfg.Generation.Model)
	assert.Equal(t, "/tmp/briefs", cfg.Output.OutputDir)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoadConfigPrefixedEnvWins(t *testing.T) {
	t.Setenv("NVIDIA_API_KEY", "legacy")
	t.Setenv("BRIEF_ENGINE_GENERATION_API_KEY", "prefixed")

	v := viper.New()
	setDefaults(v)

	cfg, err := loadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, "prefixed", cfg.Generation.APIKey)
}

func TestPrintEvents(t *testing.T) {
	events := make(chan pipeline.Event, 4)
	events <- pipeline.Event{Type: pipeline.EventStatus, Agent: pipeline.StageResearch, Status: pipeline.StatusRunning, Message: "Gathering"}
	events <- pipeline.Event{Type: pipeline.EventResult, Agent: pipeline.StageResearch, Content: "notes"}
	events <- pipeline.Event{Type: pipeline.EventComplete, Filepath: "output/brief.md"}
	close(events)

	var out, progress bytes.Buffer
	require.NoError(t, printEvents(events, &out, &progress))
	assert.Equal(t, "## Research\n\nnotes\n\n", out.String())
	assert.Equal(t, "[research] Gathering\nBrief saved to output/brief.md\n", progress.String())
}

func TestPrintEventsError(t *testing.T) {
	events := make(chan pipeline.Event, 1)
	events <- pipeline.Event{Type: pipeline.EventError, Message: "strategy stage: quota"}
	close(events)

	err := printEvents(events, &bytes.Buffer{}, &bytes.Buffer{})
	assert.EqualError(t, err, "strategy stage: quota")
}

func TestDefaultExportPath(t *testing.T) {
	tests := []struct {
		dir, format, want string
	}{
		{dir: "runs", format: "yaml", want: filepath.Join("runs", "knowledge-export.yaml")},
		{dir: "runs", format: "", want: filepath.Join("runs", "knowledge-export.yaml")},
		{dir: "runs", format: "json", want: filepath.Join("runs", "knowledge-export.json")},
		{dir: "/tmp/briefs", format: "sqlite", want: filepath.Join("/tmp/briefs", "knowledge-export.db")},
		{dir: "", format: "json", want: filepath.Join("output", "knowledge-export.json")},
	}
	for _, tt := range tests {
		t.Run(tt.dir+"/"+tt.format, func(t *testing.T) {
			assert.Equal(t, tt.want, defaultExportPath(tt.dir, tt.format))
		})
	}

	v := viper.New()
	setDefaults(v)
	v.Set("output.output_dir", "custom-out")
	cfg, err := loadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("custom-out", "knowledge-export.db"), defaultExportPath(cfg.Output.OutputDir, "sqlite"))
}

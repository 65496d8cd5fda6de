// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// AIConfig holds settings for the generation backend.
type AIConfig struct {
	// Model is the model identifier served by the endpoint
	// (e.g. "meta/llama-3.1-70b-instruct").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// BaseURL is the OpenAI-compatible endpoint (default NVIDIA NIM).
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// APIKey is the authentication key for the endpoint.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// MaxTokens caps each completion (default 2048).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens" mapstructure:"max_tokens"`

	// Timeout bounds a single generation call. Zero means no client timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// KnowledgeBaseConfig holds settings for the campaign knowledge base.
type KnowledgeBaseConfig struct {
	// KnowledgeDir holds the batch files (.json, .yaml, .yml, .toml, .db).
	KnowledgeDir string `json:"knowledge_dir" yaml:"knowledge_dir" mapstructure:"knowledge_dir"`

	// DefaultLimit is the result count used when a query sets none (default 3).
	DefaultLimit int `json:"default_limit" yaml:"default_limit" mapstructure:"default_limit"`
}

// OutputConfig holds settings for persisted briefs.
type OutputConfig struct {
	// OutputDir is where brief artifacts are written (default "output").
	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`
}

// ServerConfig holds settings for the HTTP delivery adapter.
type ServerConfig struct {
	// Addr is the listen address (default ":5000").
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`
}

// BriefConfig groups all configuration for the brief pipeline.
type BriefConfig struct {
	Generation    AIConfig            `json:"generation" yaml:"generation" mapstructure:"generation"`
	KnowledgeBase KnowledgeBaseConfig `json:"knowledge_base" yaml:"knowledge_base" mapstructure:"knowledge_base"`
	Output        OutputConfig        `json:"output" yaml:"output" mapstructure:"output"`
	Server        ServerConfig        `json:"server" yaml:"server" mapstructure:"server"`
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package generate wraps the text-generation endpoint used by the brief
// pipeline. A Generator turns role instructions plus user content into
// generated text; the production backend calls an NVIDIA NIM
// OpenAI-compatible chat completions API.
package generate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sashabaranov/go-openai"

	"github.com/pdiddy/brief-engine/pkg/types"
)

const (
	// DefaultBaseURL is the NVIDIA NIM OpenAI-compatible endpoint.
	DefaultBaseURL = "https://integrate.api.nvidia.com/v1"

	// DefaultModel is used when the configuration names none.
	DefaultModel = "meta/llama-3.1-70b-instruct"

	defaultMaxTokens = 2048
)

// ErrMissingAPIKey is returned by NewNIMBackend when no API key is configured.
var ErrMissingAPIKey = errors.New("NVIDIA API key is not set: get one from https://build.nvidia.com and set NVIDIA_API_KEY or .secrets/nvidia-api-key")

// Request is one generation call.
type Request struct {
	// Role names the calling stage, for errors and logs.
	Role string

	// Instructions is the role-specific system prompt.
	Instructions string

	// Input is the user content, including any retrieved reference material.
	Input string

	// Temperature is the sampling temperature for this role.
	Temperature float32
}

// Generator produces text for a Request. Implementations report failures
// as *GenerationError.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, req Request) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// GenerationError reports a failed generation call (transport, auth, quota,
// or an empty completion).
type GenerationError struct {
	Role string
	Err  error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed for %s: %v", e.Role, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// NIMBackend calls a chat completions endpoint through go-openai.
type NIMBackend struct {
	client    *openai.Client
	model     string
	maxTokens int
	logger    *slog.Logger
}

// NewNIMBackend builds a backend from cfg, filling in the default model,
// endpoint, and token cap.
func NewNIMBackend(cfg types.AIConfig, logger *slog.Logger) (*NIMBackend, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if logger == nil {
		logger = slog.Default()
	}

	oc := openai.DefaultConfig(cfg.APIKey)
	oc.BaseURL = DefaultBaseURL
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		oc.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	logger.Info("initializing generation backend", "model", model, "base_url", oc.BaseURL)

	return &NIMBackend{
		client:    openai.NewClientWithConfig(oc),
		model:     model,
		maxTokens: maxTokens,
		logger:    logger,
	}, nil
}

// Generate sends the role instructions as the system message and the input
// as the user message, and returns the first choice's content.
func (b *NIMBackend) Generate(ctx context.Context, req Request) (string, error) {
	b.logger.Debug("generating", "role", req.Role, "model", b.model, "input_bytes", len(req.Input))

	resp, err := b.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: b.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.Instructions},
			{Role: openai.ChatMessageRoleUser, Content: req.Input},
		},
		Temperature: req.Temperature,
		MaxTokens:   b.maxTokens,
	})
	if err != nil {
		return "", &GenerationError{Role: req.Role, Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &GenerationError{Role: req.Role, Err: errors.New("endpoint returned no choices")}
	}

	b.logger.Debug("generated", "role", req.Role, "finish_reason", resp.Choices[0].FinishReason)
	return resp.Choices[0].Message.Content, nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// BriefInput holds the caller-supplied inputs for one pipeline run.
// The wire names match the web client: brand, goal, industry, context.
type BriefInput struct {
	// Subject is the product, brand, or company the brief is for. Required.
	Subject string `json:"brand" yaml:"brand" binding:"required"`

	// Goal is what the campaign should achieve. Required.
	Goal string `json:"goal" yaml:"goal" binding:"required"`

	// Sector is the industry or category (optional).
	Sector string `json:"industry,omitempty" yaml:"industry,omitempty"`

	// Notes is free-text additional context (optional).
	Notes string `json:"context,omitempty" yaml:"context,omitempty"`
}

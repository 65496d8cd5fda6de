// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the brief-engine pipeline:
// knowledge base records, caller input, and configuration.
package types

// CampaignFields lists the wire names every knowledge base record must carry.
// Narrative fields may be empty but never absent.
var CampaignFields = []string{
	"campaign",
	"brand",
	"agency",
	"year",
	"award",
	"category",
	"insight",
	"single_minded_proposition",
	"strategy",
	"creative_idea",
	"why_it_won",
	"effectiveness_notes",
}

// Campaign is one award-winning case study in the knowledge base.
// Records are immutable once loaded.
type Campaign struct {
	// Name is the campaign title.
	Name string `json:"campaign" yaml:"campaign" toml:"campaign" validate:"required"`

	// Brand is the advertiser that ran the campaign.
	Brand string `json:"brand" yaml:"brand" toml:"brand" validate:"required"`

	// Agency is the team that authored the work.
	Agency string `json:"agency" yaml:"agency" toml:"agency"`

	// Year is the award year.
	Year int `json:"year" yaml:"year" toml:"year" validate:"gt=0"`

	// Award is the tier label (e.g. "Gold Lion", "Grand Prix"). Compared
	// case-insensitively.
	Award string `json:"award" yaml:"award" toml:"award" validate:"required"`

	// Category is the festival category the work was entered in.
	Category string `json:"category" yaml:"category" toml:"category"`

	Insight       string `json:"insight" yaml:"insight" toml:"insight"`
	Proposition   string `json:"single_minded_proposition" yaml:"single_minded_proposition" toml:"single_minded_proposition"`
	Strategy      string `json:"strategy" yaml:"strategy" toml:"strategy"`
	CreativeIdea  string `json:"creative_idea" yaml:"creative_idea" toml:"creative_idea"`
	Rationale     string `json:"why_it_won" yaml:"why_it_won" toml:"why_it_won"`
	Effectiveness string `json:"effectiveness_notes" yaml:"effectiveness_notes" toml:"effectiveness_notes"`
}

// CampaignBatch is the on-disk envelope for TOML batch files, which cannot
// hold a bare top-level array.
type CampaignBatch struct {
	Campaigns []Campaign `json:"campaigns" yaml:"campaigns" toml:"campaigns"`
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package knowledge loads the award-winning campaign knowledge base and
// ranks its records against free-text queries.
//
// The store is built once from one or more batch sources and is immutable
// afterwards; every query method is a pure function over the loaded records
// and is safe for concurrent use.
package knowledge

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/pdiddy/brief-engine/pkg/types"
)

// validate checks the per-record invariants: name, brand, and award are
// non-empty and year is positive.
var validate = validator.New(validator.WithRequiredStructEnabled())

// LoadError reports a malformed knowledge base source. Index is the
// zero-based record position within the source, or -1 when the source as a
// whole could not be read.
type LoadError struct {
	Source string
	Index  int
	Err    error
}

func (e *LoadError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("loading knowledge source %s: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("loading knowledge source %s: record %d: %v", e.Source, e.Index, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// entry pairs a campaign with its precomputed lowercase search fields.
type entry struct {
	campaign    types.Campaign
	text        string
	proposition string
	insight     string
}

// Store holds the campaign knowledge base in load order.
type Store struct {
	entries      []entry
	defaultLimit int
}

// Load reads every source in order and builds a Store. Any malformed
// source or record aborts the whole load with a *LoadError; no partial
// store is returned.
func Load(ctx context.Context, sources ...Source) (*Store, error) {
	s := &Store{defaultLimit: DefaultLimit}

	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		batch, err := src.Read(ctx)
		if err != nil {
			return nil, &LoadError{Source: src.Name(), Index: -1, Err: err}
		}

		for i, c := range batch {
			if err := validate.Struct(c); err != nil {
				return nil, &LoadError{Source: src.Name(), Index: i, Err: err}
			}
			s.entries = append(s.entries, newEntry(c))
		}
	}

	return s, nil
}

// LoadDir loads every supported batch file in cfg.KnowledgeDir in filename
// order and applies the configured default result limit.
func LoadDir(ctx context.Context, cfg types.KnowledgeBaseConfig) (*Store, error) {
	sources, err := DirSources(cfg.KnowledgeDir)
	if err != nil {
		return nil, err
	}

	s, err := Load(ctx, sources...)
	if err != nil {
		return nil, err
	}
	if cfg.DefaultLimit > 0 {
		s.defaultLimit = cfg.DefaultLimit
	}
	return s, nil
}

func newEntry(c types.Campaign) entry {
	return entry{
		campaign:    c,
		text:        searchableText(c),
		proposition: strings.ToLower(c.Proposition),
		insight:     strings.ToLower(c.Insight),
	}
}

// searchableText joins every identifying and narrative field, lowercased.
func searchableText(c types.Campaign) string {
	return strings.ToLower(strings.Join([]string{
		c.Name, c.Brand, c.Agency, strconv.Itoa(c.Year), c.Award, c.Category,
		c.Insight, c.Proposition, c.Strategy, c.CreativeIdea,
		c.Rationale, c.Effectiveness,
	}, " "))
}

// Len returns the number of loaded campaigns.
func (s *Store) Len() int {
	return len(s.entries)
}

// All returns the campaigns in load order. The slice is a copy.
func (s *Store) All() []types.Campaign {
	out := make([]types.Campaign, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.campaign
	}
	return out
}

// Propositions lists every single-minded proposition as "brand: proposition".
func (s *Store) Propositions() []string {
	out := make([]string, len(s.entries))
	for i, e := range s.entries {
		out[i] = fmt.Sprintf("%s: %s", e.campaign.Brand, e.campaign.Proposition)
	}
	return out
}

// Insights lists every insight as "brand (campaign): insight".
func (s *Store) Insights() []string {
	out := make([]string, len(s.entries))
	for i, e := range s.entries {
		out[i] = fmt.Sprintf("%s (%s): %s", e.campaign.Brand, e.campaign.Name, e.campaign.Insight)
	}
	return out
}

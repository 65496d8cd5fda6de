// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package knowledge

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/brief-engine/pkg/types"
)

// DefaultLimit is the result count used when a Query sets none.
const DefaultLimit = 3

const (
	// minTermLength drops short noise words ("a", "in", "q3").
	minTermLength = 3

	propositionBoost = 3
	insightBoost     = 2

	contextSeparator = "\n---\n\n"
)

// termPattern splits a query on word boundaries.
var termPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// Query holds the parameters for one retrieval call.
type Query struct {
	// Text is the free-text query.
	Text string

	// Limit caps the number of results. Zero uses the store default.
	Limit int

	// Award restricts results to records whose award label contains this
	// string, case-insensitively. Empty means no filter.
	Award string
}

// ScoredResult pairs a campaign with its relevance score for one query.
type ScoredResult struct {
	types.Campaign `yaml:",inline"`
	Score          int `json:"score" yaml:"score"`
}

// Terms tokenizes a query into its distinct lowercase terms, in first-seen
// order, dropping terms shorter than three characters.
func Terms(query string) []string {
	seen := make(map[string]bool)
	var terms []string
	for _, t := range termPattern.FindAllString(strings.ToLower(query), -1) {
		if utf8.RuneCountInString(t) < minTermLength || seen[t] {
			continue
		}
		seen[t] = true
		terms = append(terms, t)
	}
	return terms
}

// Score computes the lexical relevance of c for the given terms. The base
// score counts substring occurrences of each term in the record's
// searchable text; each term found in the proposition adds 3 and each term
// found in the insight adds 2. Matching is by substring, so a term also
// hits inside longer words.
func Score(c types.Campaign, terms []string) int {
	return newEntry(c).score(terms)
}

func (e entry) score(terms []string) int {
	score := 0
	for _, t := range terms {
		score += strings.Count(e.text, t)
		if strings.Contains(e.proposition, t) {
			score += propositionBoost
		}
		if strings.Contains(e.insight, t) {
			score += insightBoost
		}
	}
	return score
}

// Rank returns the top results for q with their scores. Records failing
// the award filter are excluded first, before any other rule, so the
// filter also holds for a query with no usable terms: that query returns
// the first records matching the award in load order, all scored zero,
// not the first records of the whole store. Otherwise results are ordered
// by score descending, ties kept in load order.
func (s *Store) Rank(q Query) []ScoredResult {
	limit := q.Limit
	if limit <= 0 {
		limit = s.defaultLimit
	}

	award := strings.ToLower(q.Award)
	terms := Terms(q.Text)

	var results []ScoredResult
	for _, e := range s.entries {
		if award != "" && !strings.Contains(strings.ToLower(e.campaign.Award), award) {
			continue
		}
		if len(terms) == 0 {
			if len(results) == limit {
				break
			}
			results = append(results, ScoredResult{Campaign: e.campaign})
			continue
		}
		results = append(results, ScoredResult{Campaign: e.campaign, Score: e.score(terms)})
	}

	if len(terms) > 0 {
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].Score > results[j].Score
		})
	}

	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// Retrieve returns the campaigns Rank would return, without scores.
func (s *Store) Retrieve(q Query) []types.Campaign {
	ranked := s.Rank(q)
	out := make([]types.Campaign, len(ranked))
	for i, r := range ranked {
		out[i] = r.Campaign
	}
	return out
}

// RetrieveContext formats the retrieved campaigns as reference blocks for a
// generation prompt. It returns "" when nothing matched.
func (s *Store) RetrieveContext(q Query) string {
	campaigns := s.Retrieve(q)
	if len(campaigns) == 0 {
		return ""
	}
	parts := make([]string, len(campaigns))
	for i, c := range campaigns {
		parts[i] = FormatCampaign(c)
	}
	return strings.Join(parts, contextSeparator)
}

// FormatCampaign renders one campaign as a labeled reference block.
func FormatCampaign(c types.Campaign) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s** (%s, %d) - %s\n", c.Name, c.Brand, c.Year, c.Award)
	fmt.Fprintf(&b, "Agency: %s\n", c.Agency)
	fmt.Fprintf(&b, "Insight: %s\n", c.Insight)
	fmt.Fprintf(&b, "Single-Minded Proposition: %s\n", c.Proposition)
	fmt.Fprintf(&b, "Strategy: %s\n", c.Strategy)
	fmt.Fprintf(&b, "Creative Idea: %s\n", c.CreativeIdea)
	fmt.Fprintf(&b, "Why It Won: %s\n", c.Rationale)
	fmt.Fprintf(&b, "Effectiveness: %s\n", c.Effectiveness)
	return b.String()
}

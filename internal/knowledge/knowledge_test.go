// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package knowledge

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/brief-engine/pkg/types"
)

// --- test helpers ---

// sample returns a campaign whose fields avoid common query words.
func sample(name string) types.Campaign {
	return types.Campaign{
		Name:     name,
		Brand:    "Brand " + name,
		Agency:   "Studio",
		Year:     2020,
		Award:    "Silver Lion",
		Category: "Film",
	}
}

func loadStatic(t *testing.T, campaigns ...types.Campaign) *Store {
	t.Helper()
	s, err := Load(context.Background(), StaticSource{Label: "test", Campaigns: campaigns})
	require.NoError(t, err)
	return s
}

func names(campaigns []types.Campaign) []string {
	out := make([]string, len(campaigns))
	for i, c := range campaigns {
		out[i] = c.Name
	}
	return out
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// --- tokenization ---

func TestTerms(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "empty", query: "", want: nil},
		{name: "short words only", query: "a in Q3 to", want: nil},
		{name: "lowercases and drops short", query: "Acme Running Shoes Launch in Q3", want: []string{"acme", "running", "shoes", "launch"}},
		{name: "deduplicates", query: "run RUN running run", want: []string{"run", "running"}},
		{name: "punctuation splits", query: "brand-led, (fame)!", want: []string{"brand", "led", "fame"}},
		{name: "unicode letters", query: "café élan", want: []string{"café", "élan"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Terms(tt.query))
		})
	}
}

// --- scoring ---

func TestScoreSubstringSemantics(t *testing.T) {
	c := sample("Alpha")
	c.Strategy = "Runners run; rerun the running club"

	// "run" occurs inside "runners", "run", "rerun", and "running".
	assert.Equal(t, 4, Score(c, []string{"run"}))
}

func TestScoreBoosts(t *testing.T) {
	base := sample("Alpha")

	withProposition := base
	withProposition.Proposition = "river"

	withInsight := base
	withInsight.Insight = "river"

	terms := []string{"river"}
	baseScore := Score(base, terms)

	assert.Equal(t, 0, baseScore)
	assert.Equal(t, 1+propositionBoost, Score(withProposition, terms))
	assert.Equal(t, 1+insightBoost, Score(withInsight, terms))
	assert.GreaterOrEqual(t, Score(withProposition, terms)-baseScore, 3)
	assert.GreaterOrEqual(t, Score(withInsight, terms)-baseScore, 2)
}

func TestScoreBoostIndependentOfRepeats(t *testing.T) {
	c := sample("Alpha")
	c.Proposition = "river river river"

	// Three base hits, one proposition boost.
	assert.Equal(t, 3+propositionBoost, Score(c, []string{"river"}))
}

func TestScoreIncludesIdentifyingFields(t *testing.T) {
	c := sample("Alpha")
	c.Award = "Gold Lion"
	c.Year = 2019

	assert.Equal(t, 1, Score(c, []string{"gold"}))
	assert.Equal(t, 1, Score(c, []string{"2019"}))
}

// --- retrieval ---

func TestRetrieveDegenerateQueryReturnsLoadOrder(t *testing.T) {
	a, b, c, d := sample("Alpha"), sample("Bravo"), sample("Charlie"), sample("Delta")
	d.Proposition = "everything"
	s := loadStatic(t, a, b, c, d)

	for _, q := range []string{"", "a an Q3", "   ", "!!"} {
		got := s.Retrieve(Query{Text: q, Limit: 3})
		if diff := cmp.Diff([]string{"Alpha", "Bravo", "Charlie"}, names(got)); diff != "" {
			t.Errorf("query %q (-want +got):\n%s", q, diff)
		}
	}
}

func TestRetrieveDefaultLimit(t *testing.T) {
	s := loadStatic(t, sample("Alpha"), sample("Bravo"), sample("Charlie"), sample("Delta"))
	assert.Len(t, s.Retrieve(Query{}), DefaultLimit)
}

func TestRetrieveStableTies(t *testing.T) {
	a, b, c, top := sample("Alpha"), sample("Bravo"), sample("Charlie"), sample("Zulu")
	for _, x := range []*types.Campaign{&a, &b, &c} {
		x.Strategy = "down by the river"
	}
	top.Proposition = "river"
	s := loadStatic(t, a, b, c, top)

	got := s.Rank(Query{Text: "river", Limit: 4})
	require.Len(t, got, 4)

	want := []string{"Zulu", "Alpha", "Bravo", "Charlie"}
	gotNames := make([]string, len(got))
	for i, r := range got {
		gotNames[i] = r.Name
	}
	if diff := cmp.Diff(want, gotNames); diff != "" {
		t.Errorf("ranking (-want +got):\n%s", diff)
	}
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Score, got[i].Score)
	}
}

func TestRetrieveAwardFilter(t *testing.T) {
	gold, silver := sample("Alpha"), sample("Bravo")
	gold.Award = "Gold Lion"
	silver.Proposition = "river"
	s := loadStatic(t, silver, gold)

	for _, filter := range []string{"gold", "GOLD", "Gold Li"} {
		got := s.Retrieve(Query{Text: "river", Award: filter})
		assert.Equal(t, []string{"Alpha"}, names(got), "filter %q", filter)
	}

	// The filter also applies to the degenerate fallback: the unfiltered
	// fallback leads with Bravo, the filtered one skips it.
	assert.Equal(t, []string{"Bravo", "Alpha"}, names(s.Retrieve(Query{})))
	assert.Equal(t, []string{"Alpha"}, names(s.Retrieve(Query{Award: "gold"})))
	assert.Empty(t, s.Retrieve(Query{Text: "river", Award: "grand prix"}))
}

func TestRetrieveEndToEndScenario(t *testing.T) {
	plain := sample("Quiet Hours")
	plain.Insight = "People crave calm evenings"

	runner := sample("Every Mile")
	runner.Proposition = "Every running mile counts"

	s := loadStatic(t, plain, runner)

	query := strings.TrimSpace("Acme Running Shoes" + " " + "Launch in Q3" + " " + "")
	got := s.Rank(Query{Text: query, Limit: 2})
	require.Len(t, got, 2)
	assert.Equal(t, "Every Mile", got[0].Name)
	assert.GreaterOrEqual(t, got[0].Score-got[1].Score, 3)
}

func TestRetrieveContext(t *testing.T) {
	a := types.Campaign{
		Name: "Fearless Girl", Brand: "State Street", Agency: "McCann", Year: 2017,
		Award: "Grand Prix", Category: "Outdoor", Insight: "Boards lack women",
		Proposition: "Gender diversity pays", Strategy: "Statue", CreativeIdea: "Bronze girl",
		Rationale: "Cultural moment", Effectiveness: "Boards changed",
	}
	b := sample("Bravo")
	s := loadStatic(t, a, b)

	got := s.RetrieveContext(Query{Limit: 2})
	blocks := strings.Split(got, contextSeparator)
	require.Len(t, blocks, 2)

	assert.Equal(t, "**Fearless Girl** (State Street, 2017) - Grand Prix\n"+
		"Agency: McCann\n"+
		"Insight: Boards lack women\n"+
		"Single-Minded Proposition: Gender diversity pays\n"+
		"Strategy: Statue\n"+
		"Creative Idea: Bronze girl\n"+
		"Why It Won: Cultural moment\n"+
		"Effectiveness: Boards changed\n", blocks[0])
	assert.True(t, strings.HasPrefix(blocks[1], "**Bravo** (Brand Bravo, 2020) - Silver Lion\n"))

	assert.Equal(t, "", s.RetrieveContext(Query{Award: "bronze"}))
}

// --- loading ---

func TestLoadRejectsInvalidRecords(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*types.Campaign)
	}{
		{name: "zero year", mutate: func(c *types.Campaign) { c.Year = 0 }},
		{name: "negative year", mutate: func(c *types.Campaign) { c.Year = -1 }},
		{name: "empty name", mutate: func(c *types.Campaign) { c.Name = "" }},
		{name: "empty award", mutate: func(c *types.Campaign) { c.Award = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bad := sample("Bravo")
			tt.mutate(&bad)

			s, err := Load(context.Background(),
				StaticSource{Label: "first", Campaigns: []types.Campaign{sample("Alpha")}},
				StaticSource{Label: "second", Campaigns: []types.Campaign{sample("Charlie"), bad}},
			)
			assert.Nil(t, s)

			var le *LoadError
			require.ErrorAs(t, err, &le)
			assert.Equal(t, "second", le.Source)
			assert.Equal(t, 1, le.Index)
		})
	}
}

func TestLoadAllowsEmptyNarratives(t *testing.T) {
	s := loadStatic(t, sample("Alpha"))
	assert.Equal(t, 1, s.Len())
}

func TestAllReturnsCopy(t *testing.T) {
	s := loadStatic(t, sample("Alpha"))
	all := s.All()
	all[0].Name = "mutated"
	assert.Equal(t, "Alpha", s.All()[0].Name)
}

func TestPropositionsAndInsights(t *testing.T) {
	c := sample("Alpha")
	c.Proposition = "Be brave"
	c.Insight = "Fear holds us back"
	s := loadStatic(t, c)

	assert.Equal(t, []string{"Brand Alpha: Be brave"}, s.Propositions())
	assert.Equal(t, []string{"Brand Alpha (Alpha): Fear holds us back"}, s.Insights())
}

const validJSON = `[{
  "campaign": "Alpha", "brand": "Acme", "agency": "Studio", "year": 2021,
  "award": "Gold Lion", "category": "Film", "insight": "", "single_minded_proposition": "Be bold",
  "strategy": "", "creative_idea": "", "why_it_won": "", "effectiveness_notes": ""
}]`

const validYAML = `- campaign: Bravo
  brand: Acme
  agency: Studio
  year: 2022
  award: Silver Lion
  category: Print
  insight: ""
  single_minded_proposition: Be calm
  strategy: ""
  creative_idea: ""
  why_it_won: ""
  effectiveness_notes: ""
`

const validTOML = `[[campaigns]]
campaign = "Charlie"
brand = "Acme"
agency = "Studio"
year = 2023
award = "Bronze Lion"
category = "Radio"
insight = ""
single_minded_proposition = "Be loud"
strategy = ""
creative_idea = ""
why_it_won = ""
effectiveness_notes = ""
`

func TestFileSourceFormats(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		file string
		body string
		want types.Campaign
	}{
		{file: "a.json", body: validJSON, want: types.Campaign{Name: "Alpha", Brand: "Acme", Agency: "Studio", Year: 2021, Award: "Gold Lion", Category: "Film", Proposition: "Be bold"}},
		{file: "b.yaml", body: validYAML, want: types.Campaign{Name: "Bravo", Brand: "Acme", Agency: "Studio", Year: 2022, Award: "Silver Lion", Category: "Print", Proposition: "Be calm"}},
		{file: "c.toml", body: validTOML, want: types.Campaign{Name: "Charlie", Brand: "Acme", Agency: "Studio", Year: 2023, Award: "Bronze Lion", Category: "Radio", Proposition: "Be loud"}},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			path := writeFile(t, dir, tt.file, tt.body)
			got, err := FileSource{Path: path}.Read(context.Background())
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, tt.want, got[0])
		})
	}
}

func TestFileSourceMissingField(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		file string
		body string
	}{
		{file: "a.json", body: strings.Replace(validJSON, `"why_it_won": "", `, "", 1)},
		{file: "b.json", body: strings.Replace(validJSON, `"insight": ""`, `"insight": null`, 1)},
		{file: "c.yaml", body: strings.Replace(validYAML, "  strategy: \"\"\n", "", 1)},
		{file: "d.toml", body: strings.Replace(validTOML, "year = 2023\n", "", 1)},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			path := writeFile(t, dir, tt.file, tt.body)
			_, err := Load(context.Background(), FileSource{Path: path})

			var le *LoadError
			require.ErrorAs(t, err, &le)
			assert.Equal(t, path, le.Source)
			assert.True(t, errors.Is(err, ErrMissingFields), "got %v", err)
		})
	}
}

func TestFileSourceUnsupportedFormat(t *testing.T) {
	path := writeFile(t, t.TempDir(), "notes.txt", "hello")
	_, err := FileSource{Path: path}.Read(context.Background())
	assert.ErrorContains(t, err, "unsupported batch format")
}

func TestLoadDirOrderAndSkips(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "02-second.yaml", validYAML)
	writeFile(t, dir, "01-first.json", validJSON)
	writeFile(t, dir, "03-third.toml", validTOML)
	writeFile(t, dir, "README.md", "# not a batch")
	writeFile(t, dir, ".hidden.json", "not json")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))

	s, err := LoadDir(context.Background(), types.KnowledgeBaseConfig{KnowledgeDir: dir, DefaultLimit: 2})
	require.NoError(t, err)

	assert.Equal(t, []string{"Alpha", "Bravo", "Charlie"}, names(s.All()))
	assert.Len(t, s.Retrieve(Query{}), 2)
}

func TestLoadDirMissingDirectory(t *testing.T) {
	_, err := LoadDir(context.Background(), types.KnowledgeBaseConfig{KnowledgeDir: filepath.Join(t.TempDir(), "nope")})
	assert.ErrorContains(t, err, "reading knowledge directory")
}

func TestLoadHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Load(ctx, StaticSource{Label: "x", Campaigns: []types.Campaign{sample("Alpha")}})
	assert.ErrorIs(t, err, context.Canceled)
}

// --- export ---

func TestExportRoundTrip(t *testing.T) {
	a, b := sample("Alpha"), sample("Bravo")
	a.Insight = "Line one\nline two"
	s := loadStatic(t, a, b)
	dir := t.TempDir()

	t.Run("yaml", func(t *testing.T) {
		path := filepath.Join(dir, "export.yaml")
		require.NoError(t, s.ExportYAML(path))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		var got []types.Campaign
		require.NoError(t, yaml.Unmarshal(data, &got))
		assert.Equal(t, s.All(), got)
	})

	t.Run("json", func(t *testing.T) {
		path := filepath.Join(dir, "export.json")
		require.NoError(t, s.ExportJSON(path))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		var got []types.Campaign
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, s.All(), got)
	})

	t.Run("sqlite", func(t *testing.T) {
		path := filepath.Join(dir, "campaigns.db")
		require.NoError(t, s.ExportSQLite(context.Background(), path))
		// A second export replaces the file rather than appending.
		require.NoError(t, s.ExportSQLite(context.Background(), path))

		reloaded, err := Load(context.Background(), SQLiteSource{Path: path})
		require.NoError(t, err)
		assert.Equal(t, s.All(), reloaded.All())
	})
}

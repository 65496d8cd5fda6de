// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package knowledge

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/brief-engine/pkg/types"
)

// campaignsTable is the table SQLite batches are read from and exported to.
const campaignsTable = "campaigns"

// Source yields one batch of campaign records. Implementations must report
// records with absent fields as errors; Load checks the remaining
// per-record invariants.
type Source interface {
	Name() string
	Read(ctx context.Context) ([]types.Campaign, error)
}

// StaticSource is an in-memory batch of already-decoded records.
type StaticSource struct {
	Label     string
	Campaigns []types.Campaign
}

func (s StaticSource) Name() string { return s.Label }

func (s StaticSource) Read(context.Context) ([]types.Campaign, error) {
	return s.Campaigns, nil
}

// FileSource reads a batch file. The format follows the extension: .json
// and .yaml/.yml hold a top-level array of records, .toml holds a
// [[campaigns]] array of tables.
type FileSource struct {
	Path string
}

func (f FileSource) Name() string { return f.Path }

func (f FileSource) Read(_ context.Context) ([]types.Campaign, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("reading batch: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(f.Path)); ext {
	case ".json":
		return decodeJSON(data)
	case ".yaml", ".yml":
		return decodeYAML(data)
	case ".toml":
		return decodeTOML(data)
	default:
		return nil, fmt.Errorf("unsupported batch format %q", ext)
	}
}

// SQLiteSource reads the campaigns table of a SQLite database in rowid order.
type SQLiteSource struct {
	Path string
}

func (s SQLiteSource) Name() string { return s.Path }

func (s SQLiteSource) Read(ctx context.Context) ([]types.Campaign, error) {
	db, err := sql.Open("sqlite3", "file:"+s.Path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `SELECT `+strings.Join(types.CampaignFields, ", ")+
		` FROM `+campaignsTable+` ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("querying campaigns: %w", err)
	}
	defer rows.Close()

	var out []types.Campaign
	for rows.Next() {
		var (
			cols [len(textColumns)]sql.NullString
			year sql.NullInt64
		)
		dest := []any{
			&cols[0], &cols[1], &cols[2], &year, &cols[3], &cols[4],
			&cols[5], &cols[6], &cols[7], &cols[8], &cols[9], &cols[10],
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scanning row %d: %w", len(out), err)
		}

		var missing []string
		for i, c := range cols {
			if !c.Valid {
				missing = append(missing, textColumns[i])
			}
		}
		if !year.Valid {
			missing = append(missing, "year")
		}
		if len(missing) > 0 {
			return nil, fmt.Errorf("record %d: %w: %s", len(out), ErrMissingFields, strings.Join(missing, ", "))
		}

		out = append(out, types.Campaign{
			Name: cols[0].String, Brand: cols[1].String, Agency: cols[2].String,
			Year: int(year.Int64), Award: cols[3].String, Category: cols[4].String,
			Insight: cols[5].String, Proposition: cols[6].String, Strategy: cols[7].String,
			CreativeIdea: cols[8].String, Rationale: cols[9].String, Effectiveness: cols[10].String,
		})
	}
	return out, rows.Err()
}

// textColumns are the string columns of the campaigns table in scan order.
var textColumns = [...]string{
	"campaign", "brand", "agency", "award", "category",
	"insight", "single_minded_proposition", "strategy",
	"creative_idea", "why_it_won", "effectiveness_notes",
}

// DirSources returns one Source per supported batch file in dir, in
// filename order. Dotfiles, subdirectories, and other extensions are skipped.
func DirSources(dir string) ([]Source, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading knowledge directory %s: %w", dir, err)
	}

	var sources []Source
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		path := filepath.Join(dir, name)
		switch strings.ToLower(filepath.Ext(name)) {
		case ".json", ".yaml", ".yml", ".toml":
			sources = append(sources, FileSource{Path: path})
		case ".db", ".sqlite":
			sources = append(sources, SQLiteSource{Path: path})
		}
	}
	return sources, nil
}

func decodeJSON(data []byte) ([]types.Campaign, error) {
	var raw []map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	for i, rec := range raw {
		if err := checkFields(i, func(k string) bool {
			v, ok := rec[k]
			return ok && !bytes.Equal(bytes.TrimSpace(v), []byte("null"))
		}); err != nil {
			return nil, err
		}
	}

	var out []types.Campaign
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	return out, nil
}

func decodeYAML(data []byte) ([]types.Campaign, error) {
	var raw []map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	for i, rec := range raw {
		if err := checkFields(i, func(k string) bool {
			v, ok := rec[k]
			return ok && v != nil
		}); err != nil {
			return nil, err
		}
	}

	var out []types.Campaign
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	return out, nil
}

func decodeTOML(data []byte) ([]types.Campaign, error) {
	var raw struct {
		Campaigns []map[string]any `toml:"campaigns"`
	}
	if _, err := toml.Decode(string(data), &raw); err != nil {
		return nil, fmt.Errorf("parsing TOML: %w", err)
	}
	for i, rec := range raw.Campaigns {
		if err := checkFields(i, func(k string) bool {
			_, ok := rec[k]
			return ok
		}); err != nil {
			return nil, err
		}
	}

	var batch types.CampaignBatch
	if _, err := toml.Decode(string(data), &batch); err != nil {
		return nil, fmt.Errorf("parsing TOML: %w", err)
	}
	return batch.Campaigns, nil
}

// ErrMissingFields marks a record that lacks one or more required keys.
var ErrMissingFields = errors.New("missing fields")

func checkFields(index int, has func(string) bool) error {
	var missing []string
	for _, k := range types.CampaignFields {
		if !has(k) {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("record %d: %w: %s", index, ErrMissingFields, strings.Join(missing, ", "))
	}
	return nil
}

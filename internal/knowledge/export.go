// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package knowledge

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/brief-engine/pkg/types"
)

// ExportYAML writes every loaded campaign to path as a YAML batch that
// FileSource can read back.
func (s *Store) ExportYAML(path string) error {
	data, err := yaml.Marshal(s.All())
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ExportJSON writes every loaded campaign to path as an indented JSON batch.
func (s *Store) ExportJSON(path string) error {
	data, err := json.MarshalIndent(s.All(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ExportSQLite writes every loaded campaign into the campaigns table of a
// new SQLite database at path, in load order. An existing file is replaced.
func (s *Store) ExportSQLite(ctx context.Context, path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing %s: %w", path, err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, `CREATE TABLE `+campaignsTable+` (
		rowid INTEGER PRIMARY KEY AUTOINCREMENT,
		campaign TEXT NOT NULL,
		brand TEXT NOT NULL,
		agency TEXT NOT NULL,
		year INTEGER NOT NULL CHECK (year > 0),
		award TEXT NOT NULL,
		category TEXT NOT NULL,
		insight TEXT NOT NULL,
		single_minded_proposition TEXT NOT NULL,
		strategy TEXT NOT NULL,
		creative_idea TEXT NOT NULL,
		why_it_won TEXT NOT NULL,
		effectiveness_notes TEXT NOT NULL
	)`); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO `+campaignsTable+` (`+
		strings.Join(types.CampaignFields, ", ")+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range s.entries {
		c := e.campaign
		if _, err := stmt.ExecContext(ctx,
			c.Name, c.Brand, c.Agency, c.Year, c.Award, c.Category,
			c.Insight, c.Proposition, c.Strategy, c.CreativeIdea,
			c.Rationale, c.Effectiveness,
		); err != nil {
			return fmt.Errorf("inserting %q: %w", c.Name, err)
		}
	}

	return tx.Commit()
}

//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Knowledge groups targets that inspect the campaign knowledge base.
type Knowledge mg.Namespace

// List prints the loaded campaigns.
func (Knowledge) List() error {
	mg.Deps(Build)
	return sh.RunV(binPath, "knowledge", "list")
}

// Export writes the knowledge base to output/knowledge-export.db.
func (Knowledge) Export() error {
	mg.Deps(Build)
	return sh.RunV(binPath, "knowledge", "export", "--format", "sqlite")
}

//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Brief generates one brief and streams progress to the terminal.
func Brief(brand, goal string) error {
	mg.Deps(Build)
	return sh.RunV(binPath, "generate", "--brand", brand, "--goal", goal, "--stream")
}

// Serve starts the HTTP server on the configured address.
func Serve() error {
	mg.Deps(Build)
	return sh.RunV(binPath, "serve")
}

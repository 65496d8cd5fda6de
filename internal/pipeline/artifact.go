// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/brief-engine/pkg/types"
)

const (
	maxSlugLength     = 30
	filenameTimestamp = "20060102_150405"
	generatedLayout   = "2006-01-02 15:04"
	sectionSeparator  = "\n\n---\n\n"

	// maxCollisions bounds the suffixed names tried when a filename is taken.
	maxCollisions = 100
)

// Artifact is the persisted record of a successful run.
type Artifact struct {
	Input     types.BriefInput
	Generated time.Time
	Sections  []StageOutput
}

// Slug lowercases subject, replaces spaces with underscores, drops characters
// outside [a-z0-9_-], and caps the result at 30 characters. A subject with
// nothing left becomes "brief".
func Slug(subject string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(subject)) {
		switch {
		case r == ' ':
			b.WriteByte('_')
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		}
		if b.Len() == maxSlugLength {
			break
		}
	}
	if b.Len() == 0 {
		return "brief"
	}
	return b.String()
}

// Filename returns brief_<slug>_<YYYYMMDD_HHMMSS>.md for subject at t (UTC).
func Filename(subject string, t time.Time) string {
	return fmt.Sprintf("brief_%s_%s.md", Slug(subject), t.UTC().Format(filenameTimestamp))
}

// Render produces the Markdown document: title, generation time, goal, then
// one section per stage output separated by horizontal rules. Stage outputs
// are written verbatim.
func (a Artifact) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Creative Brief: %s\n\n", a.Input.Subject)
	fmt.Fprintf(&b, "**Generated:** %s UTC\n", a.Generated.UTC().Format(generatedLayout))
	fmt.Fprintf(&b, "**Campaign Goal:** %s", a.Input.Goal)
	for _, s := range a.Sections {
		b.WriteString(sectionSeparator)
		fmt.Fprintf(&b, "## %s\n\n", s.Stage.Title())
		b.WriteString(s.Text)
	}
	b.WriteString("\n")
	return b.String()
}

// Persist writes the artifact into dir under its generated filename and
// returns the full path. It never overwrites an existing file: when the name
// is taken, "_2", "_3", ... is inserted before the extension.
func Persist(dir string, a Artifact) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &PersistError{Path: dir, Err: err}
	}
	name := Filename(a.Input.Subject, a.Generated)

	for n := 1; n <= maxCollisions; n++ {
		path := filepath.Join(dir, collisionName(name, n))
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", &PersistError{Path: path, Err: err}
		}
		if _, err := f.WriteString(a.Render()); err != nil {
			f.Close()
			os.Remove(path)
			return "", &PersistError{Path: path, Err: err}
		}
		if err := f.Close(); err != nil {
			os.Remove(path)
			return "", &PersistError{Path: path, Err: err}
		}
		return path, nil
	}
	return "", &PersistError{
		Path: filepath.Join(dir, name),
		Err:  fmt.Errorf("%d names taken: %w", maxCollisions, fs.ErrExist),
	}
}

// collisionName returns name for n == 1 and name with "_<n>" before the
// extension otherwise.
func collisionName(name string, n int) string {
	if n == 1 {
		return name
	}
	ext := filepath.Ext(name)
	return fmt.Sprintf("%s_%d%s", strings.TrimSuffix(name, ext), n, ext)
}

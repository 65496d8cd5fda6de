// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrMalformedBrief is returned when a compiled brief lacks a required
// section or has sections out of order.
var ErrMalformedBrief = errors.New("compiled brief is malformed")

// BriefSection is one required section of a compiled brief.
type BriefSection struct {
	// Title is the canonical heading.
	Title string

	// key is the normalized prefix a heading must start with to match.
	key string
}

// BriefSections lists the required compiled-brief sections in order.
var BriefSections = []BriefSection{
	{Title: "Campaign Title", key: "campaign title"},
	{Title: "Date", key: "date"},
	{Title: "Why This Brief Exists", key: "why this brief exists"},
	{Title: "Project Overview", key: "project overview"},
	{Title: "Campaign Objective", key: "campaign objective"},
	{Title: "Target Audience", key: "target audience"},
	{Title: "Insight", key: "insight"},
	{Title: "Single-Minded Proposition", key: "single minded proposition"},
	{Title: "Reasons to Believe", key: "reasons to believe"},
	{Title: "Desired Response", key: "desired response"},
	{Title: "Tone & Voice", key: "tone & voice"},
	{Title: "The Big Idea", key: "big idea"},
	{Title: "Visual Direction", key: "visual direction"},
	{Title: "Tagline Options", key: "tagline"},
	{Title: "Deliverables", key: "deliverables"},
	{Title: "Success Metrics", key: "success metrics"},
	{Title: "Competitive Landscape", key: "competitive landscape"},
	{Title: "Mandatories & Guardrails", key: "mandatories"},
	{Title: "Budget & Timing Notes", key: "budget & timing"},
}

var (
	numberPrefix = regexp.MustCompile(`^\d+[.)]\s*`)
	spaceRun     = regexp.MustCompile(`\s+`)
	scorePattern = regexp.MustCompile(`(?i)\bscore\b\W{0,12}?(\d{1,3})\b`)
	revisedHead  = regexp.MustCompile(`(?im)^#{1,6}\s*revised brief\b.*$`)
)

// ValidateBrief checks that doc contains every BriefSections heading in
// order. Headings may be Markdown headings (#), bold lines (**...**), or
// numbered lines, and may use "and" for "&".
func ValidateBrief(doc string) error {
	var headings []string
	for _, line := range strings.Split(doc, "\n") {
		if h, ok := headingText(line); ok {
			headings = append(headings, h)
		}
	}

	cursor := 0
	for _, sec := range BriefSections {
		found := indexHeading(headings[cursor:], sec.key)
		if found < 0 {
			if indexHeading(headings[:cursor], sec.key) >= 0 {
				return fmt.Errorf("%w: section %q is out of order", ErrMalformedBrief, sec.Title)
			}
			return fmt.Errorf("%w: missing section %q", ErrMalformedBrief, sec.Title)
		}
		cursor += found + 1
	}
	return nil
}

func indexHeading(headings []string, key string) int {
	for i, h := range headings {
		if strings.HasPrefix(h, key) {
			return i
		}
	}
	return -1
}

// headingText reports whether line is heading-like and returns its
// normalized text.
func headingText(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	switch {
	case strings.HasPrefix(trimmed, "#"):
		trimmed = strings.TrimLeft(trimmed, "#")
	case strings.HasPrefix(trimmed, "**"), strings.HasPrefix(trimmed, "__"):
	case numberPrefix.MatchString(trimmed):
	default:
		return "", false
	}
	return normalizeHeading(trimmed), true
}

func normalizeHeading(s string) string {
	s = strings.TrimSpace(s)
	s = numberPrefix.ReplaceAllString(s, "")
	s = strings.NewReplacer("*", "", "_", "", "-", " ").Replace(s)
	s = numberPrefix.ReplaceAllString(strings.TrimSpace(s), "")
	s = strings.ToLower(spaceRun.ReplaceAllString(s, " "))
	s = strings.ReplaceAll(s, " and ", " & ")
	s = strings.TrimPrefix(s, "the ")
	return strings.TrimSpace(s)
}

// ParseReviewScore extracts the 0-100 quality score from review output,
// e.g. "Score: 82/100" or "**Score** - 82".
func ParseReviewScore(review string) (int, bool) {
	m := scorePattern.FindStringSubmatch(review)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n > 100 {
		return 0, false
	}
	return n, true
}

// RevisedBrief returns the text following the "Revised Brief" heading of a
// review, or false when the review has none.
func RevisedBrief(review string) (string, bool) {
	loc := revisedHead.FindStringIndex(review)
	if loc == nil {
		return "", false
	}
	return strings.TrimSpace(review[loc[1]:]), true
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs the five-stage brief generation pipeline:
// research, strategy, creative, compile, and review. Each stage sees the
// caller's input, the verbatim outputs of earlier stages, and (for every
// stage except compile) a block of reference material retrieved from the
// campaign knowledge store. A successful run persists one Markdown artifact.
package pipeline

// Stage identifies a pipeline step. Values double as the agent names on the
// event stream.
type Stage string

const (
	StageRetrieval Stage = "rag"
	StageResearch  Stage = "research"
	StageStrategy  Stage = "strategy"
	StageCreative  Stage = "creative"
	StageCompile   Stage = "compiler"
	StageReview    Stage = "review"
)

// Stages lists the generation stages in run order.
var Stages = []Stage{StageResearch, StageStrategy, StageCreative, StageCompile, StageReview}

// Title returns the artifact section heading for a generation stage.
func (s Stage) Title() string {
	switch s {
	case StageResearch:
		return "Research"
	case StageStrategy:
		return "Strategy"
	case StageCreative:
		return "Creative Direction"
	case StageCompile:
		return "Compiled Brief"
	case StageReview:
		return "Review & Final Version"
	case StageRetrieval:
		return "Reference Retrieval"
	}
	return string(s)
}

// index returns the position of s in Stages, or -1.
func (s Stage) index() int {
	for i, st := range Stages {
		if st == s {
			return i
		}
	}
	return -1
}

// Reference is the retrieved material handed to a stage. It is either
// NoReference or RetrievedReference.
type Reference interface {
	isReference()
}

// NoReference marks a stage that receives no retrieved material.
type NoReference struct{}

// RetrievedReference carries a formatted context block. Text may be empty
// when retrieval found nothing; the stage then omits its reference section.
type RetrievedReference struct {
	Text string
}

func (NoReference) isReference()        {}
func (RetrievedReference) isReference() {}

// referenceText returns the context text of ref, or "" for NoReference.
func referenceText(ref Reference) string {
	if r, ok := ref.(RetrievedReference); ok {
		return r.Text
	}
	return ""
}

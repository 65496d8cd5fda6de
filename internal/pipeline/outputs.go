// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"errors"
	"fmt"
)

// ErrOutOfOrder is returned when a stage output is recorded out of run order
// or twice.
var ErrOutOfOrder = errors.New("stage output recorded out of order")

// StageOutput is the verbatim text one stage produced.
type StageOutput struct {
	Stage Stage  `json:"stage" yaml:"stage"`
	Text  string `json:"text" yaml:"text"`
}

// Outputs accumulates stage outputs during a run. Entries are only ever
// appended, in Stages order, and never overwritten.
type Outputs struct {
	entries []StageOutput
}

// Set records the output of stage. stage must be the next stage in order.
func (o *Outputs) Set(stage Stage, text string) error {
	idx := stage.index()
	if idx < 0 {
		return fmt.Errorf("%w: unknown stage %q", ErrOutOfOrder, stage)
	}
	if idx != len(o.entries) {
		return fmt.Errorf("%w: %s at position %d, expected %d", ErrOutOfOrder, stage, idx, len(o.entries))
	}
	o.entries = append(o.entries, StageOutput{Stage: stage, Text: text})
	return nil
}

// Get returns the recorded output of stage.
func (o *Outputs) Get(stage Stage) (string, bool) {
	idx := stage.index()
	if idx < 0 || idx >= len(o.entries) {
		return "", false
	}
	return o.entries[idx].Text, true
}

// Completed returns a copy of the recorded outputs in run order.
func (o *Outputs) Completed() []StageOutput {
	out := make([]StageOutput, len(o.entries))
	copy(out, o.entries)
	return out
}

// require returns the output of an earlier stage or an error naming it.
func (o *Outputs) require(stage Stage) (string, error) {
	text, ok := o.Get(stage)
	if !ok {
		return "", fmt.Errorf("output of %s stage is not available", stage)
	}
	return text, nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/brief-engine/internal/generate"
	"github.com/pdiddy/brief-engine/internal/knowledge"
	"github.com/pdiddy/brief-engine/pkg/types"
)

const (
	// DefaultOutputDir is used when the configuration names none.
	DefaultOutputDir = "output"

	lockFile = ".brief-engine.lock"

	// reviewAward restricts review references to top-tier winners.
	reviewAward = "gold"
)

// Retriever supplies formatted reference context for a query.
// *knowledge.Store satisfies it.
type Retriever interface {
	RetrieveContext(q knowledge.Query) string
}

// StageQuery is the retrieval query issued on behalf of one stage.
type StageQuery struct {
	Stage Stage
	Query knowledge.Query
}

// Result is the outcome of a successful run. Revised holds the review's
// "Revised Brief" section and is empty when the review has none.
type Result struct {
	RunID    string        `json:"run_id"`
	Review   string        `json:"review"`
	Revised  string        `json:"revised_brief,omitempty"`
	Filename string        `json:"filename"`
	Path     string        `json:"filepath"`
	Outputs  []StageOutput `json:"outputs"`
}

// Orchestrator runs the brief pipeline against a retriever and a generator.
// It holds no per-run state; concurrent runs are serialized by a lock on the
// output directory and the loser fails with ErrBusy.
type Orchestrator struct {
	retriever Retriever
	generator generate.Generator
	outputDir string
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// WithClock sets the time source used for artifact timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// New returns an Orchestrator that writes artifacts under cfg.OutputDir.
func New(r Retriever, g generate.Generator, cfg types.OutputConfig, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		retriever: r,
		generator: g,
		outputDir: cfg.OutputDir,
		logger:    slog.Default(),
		now:       time.Now,
	}
	if o.outputDir == "" {
		o.outputDir = DefaultOutputDir
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ValidateInput rejects input missing a subject or goal.
func ValidateInput(in types.BriefInput) error {
	var missing []string
	if strings.TrimSpace(in.Subject) == "" {
		missing = append(missing, "brand")
	}
	if strings.TrimSpace(in.Goal) == "" {
		missing = append(missing, "goal")
	}
	if len(missing) > 0 {
		return &ClientInputError{Fields: missing}
	}
	return nil
}

// RetrievalQueries returns the four reference lookups for in, one per stage
// that receives reference material.
func RetrievalQueries(in types.BriefInput) []StageQuery {
	base := strings.TrimSpace(fmt.Sprintf("%s %s %s", in.Subject, in.Goal, in.Sector))
	return []StageQuery{
		{Stage: StageResearch, Query: knowledge.Query{Text: base, Limit: 2}},
		{Stage: StageStrategy, Query: knowledge.Query{Text: in.Goal + " strategy audience insight proposition", Limit: 3}},
		{Stage: StageCreative, Query: knowledge.Query{Text: in.Goal + " creative idea fame emotion", Limit: 3}},
		{Stage: StageReview, Query: knowledge.Query{Text: base, Limit: 2, Award: reviewAward}},
	}
}

// Run executes the pipeline and returns the final review text and artifact
// location.
func (o *Orchestrator) Run(ctx context.Context, in types.BriefInput) (Result, error) {
	return o.run(ctx, in, nil)
}

// Stream executes the pipeline in a new goroutine and returns its events.
// The channel receives exactly one terminal event (complete or error) and is
// then closed.
func (o *Orchestrator) Stream(ctx context.Context, in types.BriefInput) <-chan Event {
	ch := make(chan Event, maxEvents)
	go func() {
		defer close(ch)
		o.run(ctx, in, ch)
	}()
	return ch
}

func (o *Orchestrator) run(ctx context.Context, in types.BriefInput, events chan<- Event) (Result, error) {
	runID := uuid.NewString()
	em := emitter{ch: events, runID: runID}
	logger := o.logger.With("run_id", runID)
	result := Result{RunID: runID}

	fail := func(stage Stage, err error) (Result, error) {
		em.send(Event{Type: EventError, Agent: stage, Message: err.Error()})
		runsTotal.WithLabelValues(outcome(err)).Inc()
		logger.Error("run failed", "stage", stage, "error", err)
		return result, err
	}

	if err := ValidateInput(in); err != nil {
		return fail("", err)
	}

	unlock, err := o.lock()
	if err != nil {
		return fail("", err)
	}
	defer unlock()

	logger.Info("run started", "subject", in.Subject, "goal", in.Goal)
	started := time.Now()

	em.status(StageRetrieval, StatusRunning, "Retrieving award-winning campaign references...")
	refs, err := o.retrieveReferences(ctx, in)
	if err != nil {
		return fail(StageRetrieval, err)
	}
	em.status(StageRetrieval, StatusDone, fmt.Sprintf("Retrieved references for %d stages", len(refs)-1))

	var outputs Outputs
	for _, spec := range stageSpecs {
		if err := ctx.Err(); err != nil {
			return fail(spec.stage, fmt.Errorf("%w before %s stage: %v", ErrCancelled, spec.stage, err))
		}

		em.status(spec.stage, StatusRunning, spec.running)
		text, err := o.runStage(ctx, spec, in, &outputs, refs[spec.stage], logger)
		if err != nil {
			return fail(spec.stage, err)
		}
		em.send(Event{Type: EventResult, Agent: spec.stage, Content: text})
		em.status(spec.stage, StatusDone, spec.done)
	}

	if err := ctx.Err(); err != nil {
		return fail("", fmt.Errorf("%w before persisting: %v", ErrCancelled, err))
	}

	review, _ := outputs.Get(StageReview)
	if score, ok := ParseReviewScore(review); ok {
		reviewScore.Observe(float64(score))
		logger.Info("review scored", "score", score)
	}
	revised, ok := RevisedBrief(review)
	if !ok {
		logger.Warn("review has no revised brief section")
	}

	art := Artifact{Input: in, Generated: o.now(), Sections: outputs.Completed()}
	path, err := Persist(o.outputDir, art)
	if err != nil {
		return fail("", err)
	}

	result.Review = review
	result.Revised = revised
	result.Filename = filepath.Base(path)
	result.Path = path
	result.Outputs = art.Sections

	em.send(Event{Type: EventComplete, Filename: result.Filename, Filepath: path})
	runsTotal.WithLabelValues(outcome(nil)).Inc()
	logger.Info("run complete", "path", path, "duration", time.Since(started))
	return result, nil
}

// runStage renders the stage input, calls the generator, validates the
// output, and records it. The generator receives a context that is not
// cancelled with ctx; cancellation takes effect between stages.
func (o *Orchestrator) runStage(ctx context.Context, spec stageSpec, in types.BriefInput, outputs *Outputs, ref Reference, logger *slog.Logger) (string, error) {
	input, err := renderInput(spec, in, outputs, ref)
	if err != nil {
		return "", &StageError{Stage: spec.stage, Err: err}
	}

	started := time.Now()
	text, err := o.generator.Generate(context.WithoutCancel(ctx), generate.Request{
		Role:         string(spec.stage),
		Instructions: spec.instructions,
		Input:        input,
		Temperature:  spec.temperature,
	})
	elapsed := time.Since(started)
	stageDuration.WithLabelValues(string(spec.stage)).Observe(elapsed.Seconds())
	if err != nil {
		var ge *generate.GenerationError
		if !errors.As(err, &ge) {
			err = &generate.GenerationError{Role: string(spec.stage), Err: err}
		}
		return "", &StageError{Stage: spec.stage, Err: err}
	}

	if spec.stage == StageCompile {
		if err := ValidateBrief(text); err != nil {
			return "", &StageError{Stage: spec.stage, Err: err}
		}
	}

	if err := outputs.Set(spec.stage, text); err != nil {
		return "", &StageError{Stage: spec.stage, Err: err}
	}

	logger.Info("stage complete", "stage", spec.stage, "duration", elapsed, "bytes", len(text))
	return text, nil
}

// retrieveReferences runs the stage lookups concurrently and returns one
// Reference per generation stage. Compile always gets NoReference.
func (o *Orchestrator) retrieveReferences(ctx context.Context, in types.BriefInput) (map[Stage]Reference, error) {
	queries := RetrievalQueries(in)
	texts := make([]string, len(queries))

	g, gctx := errgroup.WithContext(ctx)
	for i, sq := range queries {
		i, sq := i, sq
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			texts[i] = o.retriever.RetrieveContext(sq.Query)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w during retrieval: %v", ErrCancelled, err)
	}

	refs := map[Stage]Reference{StageCompile: NoReference{}}
	for i, sq := range queries {
		refs[sq.Stage] = RetrievedReference{Text: texts[i]}
	}
	return refs, nil
}

// lock takes the output directory run lock. The returned func releases it.
func (o *Orchestrator) lock() (func(), error) {
	if err := os.MkdirAll(o.outputDir, 0o755); err != nil {
		return nil, &PersistError{Path: o.outputDir, Err: err}
	}
	fl := flock.New(filepath.Join(o.outputDir, lockFile))
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("locking output directory: %w", err)
	}
	if !locked {
		return nil, ErrBusy
	}
	return func() {
		if err := fl.Unlock(); err != nil {
			o.logger.Warn("releasing run lock", "error", err)
		}
	}, nil
}

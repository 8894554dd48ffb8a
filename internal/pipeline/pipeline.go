// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline turns a research query into a drafted report through five
// fixed stages: interpret, analyze, plan, execute, synthesize. Stages run
// strictly in order; the execute stage fans out one search call per planned
// request. A stage failure stops the run, but the caller always receives the
// Report accumulated so far; the pipeline never raises past its boundary.
//
// See docs/ARCHITECTURE § Pipeline.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/report-engine/internal/llm"
	"github.com/pdiddy/report-engine/pkg/types"
)

// Stage names, in execution order. These tag StageError values.
const (
	StageInterpret  = "interpret"
	StageAnalyze    = "analyze"
	StagePlan       = "plan"
	StageExecute    = "execute"
	StageSynthesize = "synthesize"
)

// Searcher executes one planned search request. The websearch.Client
// implements it; tests supply stubs.
type Searcher interface {
	Search(ctx context.Context, req types.SearchRequest) (types.SearchResult, error)
}

// Options carries the optional steering hints for a run.
type Options struct {
	// Domain names the subject area (e.g. "quantum computing").
	Domain string

	// Style names the desired report register (e.g. "executive briefing").
	Style string

	// Sample is example text the report should resemble.
	Sample string
}

// Pipeline owns the collaborators for a run. Construct with New; all
// collaborators are explicit so tests can substitute stubs.
type Pipeline struct {
	model    llm.Backend
	searcher Searcher
	log      *slog.Logger
}

// New builds a Pipeline. A nil logger falls back to slog.Default.
func New(model llm.Backend, searcher Searcher, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{model: model, searcher: searcher, log: log}
}

// Run executes the five stages for query and returns the accumulated Report.
// Report fields are set monotonically as stages complete; on the first stage
// failure Run records a StageError and returns with no further fields set.
// Run never returns an error.
func (p *Pipeline) Run(ctx context.Context, query string, opts Options) *types.Report {
	report := &types.Report{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Query:     query,
	}

	fail := func(stage string, err error) *types.Report {
		p.log.Warn("stage failed", "stage", stage, "err", err)
		report.Err = &types.StageError{Stage: stage, Message: err.Error()}
		return report
	}

	interpreted, err := p.interpret(ctx, query, opts)
	if err != nil {
		return fail(StageInterpret, err)
	}
	report.Interpreted = interpreted
	p.log.Info("query interpreted", "id", report.ID)

	analysis, err := p.analyze(ctx, interpreted)
	if err != nil {
		return fail(StageAnalyze, err)
	}
	report.Analysis = &analysis
	p.log.Info("query analyzed", "id", report.ID)

	requests, err := p.plan(ctx, analysis)
	if err != nil {
		return fail(StagePlan, err)
	}
	report.SearchRequests = requests
	p.log.Info("searches planned", "id", report.ID, "requests", len(requests))

	outcomes := executeAll(ctx, p.searcher, requests)
	for _, o := range outcomes {
		if o.Failed() {
			p.log.Warn("search failed", "id", report.ID, "query", o.Request.Query, "err", o.Err)
		}
	}
	report.SearchResults = successfulResults(outcomes)
	p.log.Info("searches executed", "id", report.ID,
		"succeeded", len(report.SearchResults), "failed", len(outcomes)-len(report.SearchResults))

	draft, err := p.synthesize(ctx, report.SearchResults, opts.Style)
	if err != nil {
		return fail(StageSynthesize, err)
	}
	report.Draft = &draft
	p.log.Info("draft synthesized", "id", report.ID, "sources", len(draft.Sources))

	return report
}

// interpret rewrites the raw query into a clarified research instruction.
func (p *Pipeline) interpret(ctx context.Context, query string, opts Options) (string, error) {
	prompt, err := renderInterpretPrompt(query, opts)
	if err != nil {
		return "", err
	}
	out, err := llm.Instruct(ctx, p.model, llm.Directive{Instruction: prompt})
	if err != nil {
		return "", fmt.Errorf("interpreting query: %w", err)
	}
	if out == "" {
		return "", fmt.Errorf("interpreter returned an empty query")
	}
	return out, nil
}

// analyze produces the structured analysis of the clarified query.
func (p *Pipeline) analyze(ctx context.Context, interpreted string) (types.Analysis, error) {
	analysis, err := llm.InstructJSON[types.Analysis](ctx, p.model, llm.Directive{
		Instruction: analyzeInstruction,
		Guidance:    analyzeGuidance,
		Context:     interpreted,
	})
	if err != nil {
		return types.Analysis{}, fmt.Errorf("analyzing query: %w", err)
	}
	if analysis.Analysis == "" {
		return types.Analysis{}, fmt.Errorf("analyzer returned an empty analysis")
	}
	return analysis, nil
}

// planResponse is the planner's JSON schema.
type planResponse struct {
	Requests []types.SearchRequest `json:"requests"`
}

// plan turns the analysis into zero or more search requests.
func (p *Pipeline) plan(ctx context.Context, analysis types.Analysis) ([]types.SearchRequest, error) {
	resp, err := llm.InstructJSON[planResponse](ctx, p.model, llm.Directive{
		Instruction: planInstruction,
		Guidance:    planGuidance,
		Context:     analysis.Analysis,
	})
	if err != nil {
		return nil, fmt.Errorf("planning searches: %w", err)
	}

	// An empty plan is valid; the pipeline proceeds with no sources.
	requests := resp.Requests
	if requests == nil {
		requests = []types.SearchRequest{}
	}
	for i, req := range requests {
		if req.Query == "" {
			return nil, fmt.Errorf("planned request %d has no query", i)
		}
	}
	return requests, nil
}

// synthesize drafts the report from the surviving search results.
func (p *Pipeline) synthesize(ctx context.Context, results []types.SearchResult, style string) (types.Draft, error) {
	contextJSON, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return types.Draft{}, fmt.Errorf("serializing search results: %w", err)
	}

	draft, err := llm.InstructJSON[types.Draft](ctx, p.model, llm.Directive{
		Instruction: synthesizeInstruction,
		Guidance:    renderSynthesizeGuidance(style),
		Context:     string(contextJSON),
	})
	if err != nil {
		return types.Draft{}, fmt.Errorf("synthesizing draft: %w", err)
	}
	if draft.Title == "" && draft.Content == "" {
		return types.Draft{}, fmt.Errorf("synthesizer returned an empty draft")
	}
	return draft, nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Analysis is the analyzer stage's structured output.
type Analysis struct {
	// Analysis is the structured textual breakdown of the query.
	Analysis string `json:"analysis" yaml:"analysis"`

	// Reasoning is the model's reasoning trace for the analysis.
	Reasoning string `json:"reasoning,omitempty" yaml:"reasoning,omitempty"`
}

// Source is one cited document in a finished draft.
type Source struct {
	// Title is the cited document's title.
	Title string `json:"title" yaml:"title"`

	// URL is the cited document's location.
	URL string `json:"url" yaml:"url"`
}

// Draft is the terminal artifact of the pipeline: the synthesized report.
type Draft struct {
	// Title is the report title.
	Title string `json:"title" yaml:"title"`

	// Content is the report body text.
	Content string `json:"content" yaml:"content"`

	// Sources lists the cited documents in citation order.
	Sources []Source `json:"sources" yaml:"sources"`
}

// StageError records which pipeline stage failed and why. The pipeline never
// raises past its boundary; failures surface as a StageError on the Report.
type StageError struct {
	// Stage is the failing stage name: interpret, analyze, plan,
	// execute, or synthesize.
	Stage string `json:"stage" yaml:"stage"`

	// Message is the underlying error text.
	Message string `json:"message" yaml:"message"`
}

// Error implements the error interface.
func (e *StageError) Error() string {
	return e.Stage + ": " + e.Message
}

// Report accumulates pipeline output. Each field is set exactly once, when
// its stage completes; after a stage failure no further stage fields are set
// and Err carries the cause. Partial results are always preserved.
type Report struct {
	// ID identifies this pipeline run.
	ID string `json:"id" yaml:"id"`

	// CreatedAt is when the run started.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`

	// Query is the raw user query.
	Query string `json:"query" yaml:"query"`

	// Interpreted is the clarified query produced by the interpret stage.
	Interpreted string `json:"interpreted,omitempty" yaml:"interpreted,omitempty"`

	// Analysis is the analyzer stage output.
	Analysis *Analysis `json:"analysis,omitempty" yaml:"analysis,omitempty"`

	// SearchRequests is the planner stage output. An empty, non-nil slice
	// means the planner ran and produced no requests.
	SearchRequests []SearchRequest `json:"search_requests,omitempty" yaml:"search_requests,omitempty"`

	// SearchResults holds the successful provider results in an order
	// consistent with SearchRequests (failed requests are excluded).
	SearchResults []SearchResult `json:"search_results,omitempty" yaml:"search_results,omitempty"`

	// Draft is the synthesized report. Nil when any stage failed.
	Draft *Draft `json:"research_draft,omitempty" yaml:"research_draft,omitempty"`

	// Err records the failing stage, or nil on success.
	Err *StageError `json:"error,omitempty" yaml:"error,omitempty"`
}

// Failed reports whether the pipeline stopped at a stage failure.
func (r *Report) Failed() bool {
	return r.Err != nil
}

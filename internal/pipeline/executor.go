// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"sync"

	"github.com/pdiddy/report-engine/pkg/types"
)

// SearchOutcome is the per-request result of the execute stage: either the
// provider result or the failure reason. Keeping both lets callers tell "no
// results found" apart from "the call failed".
type SearchOutcome struct {
	// Request is the planned request this outcome belongs to.
	Request types.SearchRequest

	// Result is the provider result. Zero when Err is set.
	Result types.SearchResult

	// Err is the per-call failure, or nil.
	Err error
}

// Failed reports whether this request's call failed.
func (o SearchOutcome) Failed() bool { return o.Err != nil }

// executeAll dispatches every request concurrently against the searcher and
// returns one outcome per request, indexed by request position. The searcher
// client enforces call-rate admission; this function only fans out. A failed
// call never aborts the batch.
func executeAll(ctx context.Context, s Searcher, requests []types.SearchRequest) []SearchOutcome {
	outcomes := make([]SearchOutcome, len(requests))

	var wg sync.WaitGroup
	for i, req := range requests {
		wg.Add(1)
		go func(i int, req types.SearchRequest) {
			defer wg.Done()
			result, err := s.Search(ctx, req)
			outcomes[i] = SearchOutcome{Request: req, Result: result, Err: err}
		}(i, req)
	}
	wg.Wait()

	return outcomes
}

// successfulResults filters outcomes down to the surviving results, in an
// order consistent with the original request order.
func successfulResults(outcomes []SearchOutcome) []types.SearchResult {
	results := make([]types.SearchResult, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Failed() {
			continue
		}
		results = append(results, o.Result)
	}
	return results
}

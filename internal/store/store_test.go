// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/report-engine/pkg/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(types.StoreConfig{DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("NewStore() error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleReport() *types.Report {
	return &types.Report{
		ID:          uuid.NewString(),
		CreatedAt:   time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC),
		Query:       "summarize recent findings on X",
		Interpreted: "Summarize findings on X published since 2025.",
		Analysis:    &types.Analysis{Analysis: "X matters", Reasoning: "because"},
		SearchRequests: []types.SearchRequest{
			{Query: "X findings", NumResults: 5},
		},
		SearchResults: []types.SearchResult{
			{Query: "X findings", Hits: []types.SearchHit{{Title: "Paper A", URL: "http://example.org/a"}}},
		},
		Draft: &types.Draft{
			Title:   "T",
			Content: "...",
			Sources: []types.Source{{Title: "Paper A", URL: "http://example.org/a"}},
		},
	}
}

func TestSaveAndGetRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	want := sampleReport()

	if err := s.Save(ctx, want); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	got, err := s.Get(ctx, want.ID)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}

	if got.Query != want.Query || got.Interpreted != want.Interpreted {
		t.Errorf("got %+v", got)
	}
	if got.Analysis == nil || got.Analysis.Analysis != "X matters" {
		t.Errorf("Analysis = %+v", got.Analysis)
	}
	if len(got.SearchRequests) != 1 || got.SearchRequests[0].NumResults != 5 {
		t.Errorf("SearchRequests = %+v", got.SearchRequests)
	}
	if got.Draft == nil || got.Draft.Title != "T" || len(got.Draft.Sources) != 1 {
		t.Errorf("Draft = %+v", got.Draft)
	}
	if got.Err != nil {
		t.Errorf("Err = %+v, want nil", got.Err)
	}
	if !got.CreatedAt.Equal(want.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, want.CreatedAt)
	}
}

func TestSavePreservesFailedRun(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	report := &types.Report{
		ID:          uuid.NewString(),
		CreatedAt:   time.Now().UTC(),
		Query:       "q",
		Interpreted: "clarified q",
		Err:         &types.StageError{Stage: "analyze", Message: "model unavailable"},
	}

	if err := s.Save(ctx, report); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	got, err := s.Get(ctx, report.ID)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.Err == nil || got.Err.Stage != "analyze" || got.Err.Message != "model unavailable" {
		t.Errorf("Err = %+v", got.Err)
	}
	// Fields the run never reached stay unset.
	if got.Analysis != nil || got.SearchRequests != nil || got.Draft != nil {
		t.Errorf("unreached fields populated: %+v", got)
	}
	if got.Interpreted != "clarified q" {
		t.Errorf("Interpreted = %q, want partial result preserved", got.Interpreted)
	}
}

func TestSaveRequiresID(t *testing.T) {
	s := newTestStore(t)
	err := s.Save(context.Background(), &types.Report{Query: "q"})
	if err == nil {
		t.Error("expected error for report without ID")
	}
}

func TestGetMissingReport(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Get(context.Background(), "nope")
	if err == nil {
		t.Error("expected not-found error")
	}
}

func TestListNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	old := sampleReport()
	old.CreatedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := sampleReport()
	recent.CreatedAt = time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	failed := &types.Report{
		ID:        uuid.NewString(),
		CreatedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Query:     "broken",
		Err:       &types.StageError{Stage: "plan", Message: "x"},
	}

	for _, r := range []*types.Report{old, recent, failed} {
		if err := s.Save(ctx, r); err != nil {
			t.Fatalf("Save() error: %v", err)
		}
	}

	summaries, err := s.List(ctx, 0)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(summaries) != 3 {
		t.Fatalf("len = %d", len(summaries))
	}
	if summaries[0].ID != failed.ID || !summaries[0].Failed {
		t.Errorf("summaries[0] = %+v, want newest failed run", summaries[0])
	}
	if summaries[1].Title != "T" || summaries[1].Failed {
		t.Errorf("summaries[1] = %+v", summaries[1])
	}

	limited, err := s.List(ctx, 1)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("len = %d, want limit respected", len(limited))
	}
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	r := sampleReport()

	if err := s.Save(ctx, r); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if err := s.Delete(ctx, r.ID); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, err := s.Get(ctx, r.ID); err == nil {
		t.Error("report still present after delete")
	}
	if err := s.Delete(ctx, r.ID); err == nil {
		t.Error("expected not-found error on second delete")
	}
}

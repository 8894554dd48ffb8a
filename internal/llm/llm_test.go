// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

// mockBackend returns a canned response and records the prompt it received.
type mockBackend struct {
	response string
	err      error
	prompt   string
}

func (m *mockBackend) Name() string { return "mock" }

func (m *mockBackend) Complete(_ context.Context, prompt string) (string, error) {
	m.prompt = prompt
	return m.response, m.err
}

func TestInstructRendersDirectiveSections(t *testing.T) {
	b := &mockBackend{response: "  clarified query  "}

	out, err := Instruct(context.Background(), b, Directive{
		Instruction: "Rewrite the query.",
		Guidance:    "Be precise.",
		Context:     "quantum computing",
	})
	if err != nil {
		t.Fatalf("Instruct() error: %v", err)
	}
	if out != "clarified query" {
		t.Errorf("out = %q, want trimmed response", out)
	}

	for _, want := range []string{"Rewrite the query.", "Guidance:", "Be precise.", "Context:", "quantum computing"} {
		if !strings.Contains(b.prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, b.prompt)
		}
	}
}

func TestInstructOmitsEmptySections(t *testing.T) {
	b := &mockBackend{response: "ok"}

	_, err := Instruct(context.Background(), b, Directive{Instruction: "Do the thing."})
	if err != nil {
		t.Fatalf("Instruct() error: %v", err)
	}
	if strings.Contains(b.prompt, "Guidance:") || strings.Contains(b.prompt, "Context:") {
		t.Errorf("prompt contains empty sections:\n%s", b.prompt)
	}
}

func TestInstructWrapsBackendError(t *testing.T) {
	b := &mockBackend{err: fmt.Errorf("boom")}

	_, err := Instruct(context.Background(), b, Directive{Instruction: "x"})
	if err == nil || !strings.Contains(err.Error(), "mock") {
		t.Errorf("err = %v, want backend name in message", err)
	}
}

func TestInstructJSON(t *testing.T) {
	type analysis struct {
		Analysis  string `json:"analysis"`
		Reasoning string `json:"reasoning"`
	}

	tests := []struct {
		name     string
		response string
		want     analysis
		wantErr  bool
	}{
		{
			name:     "bare object",
			response: `{"analysis": "a", "reasoning": "r"}`,
			want:     analysis{Analysis: "a", Reasoning: "r"},
		},
		{
			name:     "fenced block",
			response: "```json\n{\"analysis\": \"a\", \"reasoning\": \"r\"}\n```",
			want:     analysis{Analysis: "a", Reasoning: "r"},
		},
		{
			name:     "prose around object",
			response: "Here is the analysis:\n{\"analysis\": \"a\"}\nHope that helps.",
			want:     analysis{Analysis: "a"},
		},
		{
			name:     "no json",
			response: "I cannot help with that.",
			wantErr:  true,
		},
		{
			name:     "malformed json",
			response: `{"analysis": `,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &mockBackend{response: tt.response}
			got, err := InstructJSON[analysis](context.Background(), b, Directive{Instruction: "analyze"})
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("InstructJSON() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
			if !strings.Contains(b.prompt, "Do not include any text outside the JSON object") {
				t.Errorf("prompt missing JSON directive:\n%s", b.prompt)
			}
		})
	}
}

func TestInstructJSONList(t *testing.T) {
	type req struct {
		Query string `json:"query"`
	}
	b := &mockBackend{response: `[{"query": "a"}, {"query": "b"}]`}

	got, err := InstructJSON[[]req](context.Background(), b, Directive{Instruction: "plan"})
	if err != nil {
		t.Fatalf("InstructJSON() error: %v", err)
	}
	if len(got) != 2 || got[0].Query != "a" || got[1].Query != "b" {
		t.Errorf("got %+v, want two requests", got)
	}
}

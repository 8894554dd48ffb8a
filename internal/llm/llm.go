// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm calls Generative AI APIs with instruction-style prompts and
// decodes structured responses.
//
// See docs/ARCHITECTURE § Model Layer.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
)

// Backend abstracts a Generative AI API so tests can supply a mock. Each
// implementation turns one prompt into one completion (Strategy pattern).
type Backend interface {
	Name() string
	Complete(ctx context.Context, prompt string) (string, error)
}

// Directive is one instruction-style request: what to do, how to do it, and
// the working context to do it against.
type Directive struct {
	// Instruction is the task statement.
	Instruction string

	// Guidance constrains how the task should be carried out.
	Guidance string

	// Context is supporting material (prior stage output, search results).
	Context string
}

// directiveTmpl renders a Directive into a single prompt. Sections with no
// content are omitted.
var directiveTmpl = template.Must(template.New("directive").Parse(`{{.Instruction}}
{{- if .Guidance}}

Guidance:
{{.Guidance}}
{{- end}}
{{- if .Context}}

Context:
{{.Context}}
{{- end}}
`))

// jsonDirective is appended to structured requests so the model responds
// with parseable JSON only.
const jsonDirective = "\nRespond with a single JSON object matching the requested fields. Do not include any text outside the JSON object."

// Instruct renders the directive and returns the model's free-text response.
func Instruct(ctx context.Context, b Backend, d Directive) (string, error) {
	prompt, err := renderDirective(d)
	if err != nil {
		return "", err
	}
	out, err := b.Complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%s: %w", b.Name(), err)
	}
	return strings.TrimSpace(out), nil
}

// InstructJSON renders the directive with a JSON-only response constraint
// and unmarshals the model's response into T.
func InstructJSON[T any](ctx context.Context, b Backend, d Directive) (T, error) {
	var v T

	prompt, err := renderDirective(d)
	if err != nil {
		return v, err
	}

	out, err := b.Complete(ctx, prompt+jsonDirective)
	if err != nil {
		return v, fmt.Errorf("%s: %w", b.Name(), err)
	}

	payload := extractJSON(out)
	if payload == "" {
		return v, fmt.Errorf("%s: no JSON object in response", b.Name())
	}
	if err := json.Unmarshal([]byte(payload), &v); err != nil {
		return v, fmt.Errorf("parsing %s response: %w", b.Name(), err)
	}
	return v, nil
}

func renderDirective(d Directive) (string, error) {
	var buf bytes.Buffer
	if err := directiveTmpl.Execute(&buf, d); err != nil {
		return "", fmt.Errorf("rendering directive: %w", err)
	}
	return buf.String(), nil
}

// extractJSON returns the JSON payload within a model response, tolerating
// Markdown code fences and prose around the object.
func extractJSON(s string) string {
	s = strings.TrimSpace(s)

	// Strip a fenced block if present.
	if idx := strings.Index(s, "```"); idx >= 0 {
		rest := s[idx+3:]
		rest = strings.TrimPrefix(rest, "json")
		if end := strings.Index(rest, "```"); end >= 0 {
			s = strings.TrimSpace(rest[:end])
		}
	}

	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return ""
	}
	var closer byte
	if s[start] == '{' {
		closer = '}'
	} else {
		closer = ']'
	}
	end := strings.LastIndexByte(s, closer)
	if end <= start {
		return ""
	}
	return s[start : end+1]
}

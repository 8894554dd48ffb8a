// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"fmt"
	"text/template"
)

// interpretTmpl rewrites the raw user query into a clarified research
// instruction, optionally steered by domain/style/sample hints.
var interpretTmpl = template.Must(template.New("interpret").Parse(`Rewrite the following user query into a clear, specific research instruction. Preserve the user's intent; resolve ambiguity; do not answer the query itself.
{{- if .Domain}}
The subject domain is: {{.Domain}}.
{{- end}}
{{- if .Style}}
The eventual report will be written in this style: {{.Style}}.
{{- end}}
{{- if .Sample}}
A sample of the desired register:
{{.Sample}}
{{- end}}

Respond with the rewritten query only.

Query:
{{.Query}}
`))

const analyzeInstruction = `Analyze the research query below. Break it into the concepts involved, what a complete answer must cover, and where authoritative information is likely to be found.`

const analyzeGuidance = `Return two fields: "analysis" with the structured textual analysis, and "reasoning" with the reasoning trace that led you to it.`

const planInstruction = `From the analysis below, produce the web searches needed to gather source material for a research report.`

const planGuidance = `Return a field "requests" holding a list of search request objects. Each object has a "query" string and may set "category", "type" (neural or keyword), "num_results", "exclude_domains", "start_published_date", "end_published_date", and a "contents" object with "max_characters", "num_highlights", and "summary". Prefer a handful of precise, non-overlapping searches over many broad ones. An empty list is acceptable when the analysis needs no sources.`

const synthesizeInstruction = `Write a research report grounded in the search results below. Cite only documents that appear in the results.`

// synthesizeGuidance asks for the three-field draft schema. The style is
// interpolated per run.
const synthesizeGuidance = `Return three fields: "title" with the report title, "content" with the full report body%s, and "sources" with an ordered list of {"title", "url"} pairs for every document cited.`

// renderInterpretPrompt builds the interpret-stage instruction.
func renderInterpretPrompt(query string, opts Options) (string, error) {
	var buf bytes.Buffer
	err := interpretTmpl.Execute(&buf, struct {
		Query, Domain, Style, Sample string
	}{Query: query, Domain: opts.Domain, Style: opts.Style, Sample: opts.Sample})
	if err != nil {
		return "", fmt.Errorf("rendering interpret prompt: %w", err)
	}
	return buf.String(), nil
}

// renderSynthesizeGuidance folds the requested style into the draft schema guidance.
func renderSynthesizeGuidance(style string) string {
	if style == "" {
		return fmt.Sprintf(synthesizeGuidance, "")
	}
	return fmt.Sprintf(synthesizeGuidance, fmt.Sprintf(" written in a %s style", style))
}

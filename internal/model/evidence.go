package model

import "strings"

// Placeholders recognised in search templates. Both are replaced by the
// entity identifier.
const (
	PlaceholderCompany = "{company}"
	PlaceholderEntity  = "{entity}"
)

// SearchTemplate is a search query pattern with an entity slot,
// e.g. "{company} net revenue retention rate".
type SearchTemplate string

// Expand substitutes the entity identifier into the template.
func (t SearchTemplate) Expand(entity string) string {
	s := strings.ReplaceAll(string(t), PlaceholderCompany, entity)
	return strings.ReplaceAll(s, PlaceholderEntity, entity)
}

// Templates converts plain strings to search templates
func Templates(raw []string) []SearchTemplate {
	out := make([]SearchTemplate, len(raw))
	for i, r := range raw {
		out[i] = SearchTemplate(r)
	}
	return out
}

// Snippet is the formatted output of one search call
type Snippet struct {
	Query string `json:"query"` // Expanded query that was searched
	Text  string `json:"text"`  // Formatted top-K results
}

// EvidenceBlock accumulates the snippets gathered for one entity, in
// template order. It is owned by the worker processing that entity.
type EvidenceBlock struct {
	Entity   string    `json:"entity"`
	Snippets []Snippet `json:"snippets"`
}

// Add appends the result of one search call
func (b *EvidenceBlock) Add(query, text string) {
	b.Snippets = append(b.Snippets, Snippet{Query: query, Text: text})
}

// String renders the block as the evidence section of a scoring prompt
func (b EvidenceBlock) String() string {
	var sb strings.Builder
	for _, s := range b.Snippets {
		sb.WriteString(s.Query)
		sb.WriteString("\n")
		sb.WriteString(s.Text)
		sb.WriteString("\n\n")
	}
	return sb.String()
}

// Package strategy implements the per-entity unit of work run by the swarm:
// gather search evidence for an entity, then score it with a single
// structured call.
package strategy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ppiankov/swarm/internal/model"
)

// Searcher returns a formatted block of top results for a query
type Searcher interface {
	Search(ctx context.Context, query string) (string, error)
}

// Scorer makes one scoring call and returns the raw JSON object it produced.
// A payload that is not a JSON object must be reported as model.ErrSchema.
type Scorer interface {
	Score(ctx context.Context, systemPrompt, userPrompt string) (json.RawMessage, error)
}

// Strategy evaluates one query against one entity
type Strategy interface {
	Name() string
	Evaluate(ctx context.Context, query, entity string, templates []model.SearchTemplate) (model.QueryResult, error)
}

// Names of the built-in strategies
const (
	NameEval   = "eval"
	NameAnswer = "answer"
)

// New returns the built-in strategy with the given name
func New(name string, searcher Searcher, scorer Scorer) (Strategy, error) {
	switch strings.ToLower(name) {
	case NameEval, "":
		return NewEvalStrategy(searcher, scorer), nil
	case NameAnswer:
		return NewAnswerStrategy(searcher, scorer), nil
	default:
		return nil, fmt.Errorf("unknown strategy: %s (supported: eval, answer)", name)
	}
}

// GatherEvidence runs one search per template, in order, with the entity
// substituted in. The first failing search aborts the whole gathering.
func GatherEvidence(ctx context.Context, searcher Searcher, entity string, templates []model.SearchTemplate) (model.EvidenceBlock, error) {
	block := model.EvidenceBlock{Entity: entity}

	for _, tmpl := range templates {
		query := tmpl.Expand(entity)

		text, err := searcher.Search(ctx, query)
		if err != nil {
			return block, fmt.Errorf("search %q: %w", query, asTransport(err))
		}

		block.Add(query, text)
	}

	return block, nil
}

// renderPrompt fills the {company}, {query} and {rag} slots of a prompt
func renderPrompt(tmpl, entity, query string, evidence model.EvidenceBlock) string {
	return strings.NewReplacer(
		"{company}", entity,
		"{entity}", entity,
		"{query}", query,
		"{rag}", evidence.String(),
	).Replace(tmpl)
}

// score issues the scoring call and classifies its failure
func score(ctx context.Context, scorer Scorer, system, user string) (json.RawMessage, error) {
	raw, err := scorer.Score(ctx, system, user)
	if err != nil {
		if errors.Is(err, model.ErrSchema) {
			return nil, fmt.Errorf("score: %w", err)
		}
		return nil, fmt.Errorf("score: %w", asTransport(err))
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("score: %w: empty response", model.ErrSchema)
	}
	return raw, nil
}

// decode unmarshals a scoring response, reporting failures as schema errors
func decode(raw json.RawMessage, v any) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %w", model.ErrSchema, err)
	}
	return nil
}

func asTransport(err error) error {
	if errors.Is(err, model.ErrTransport) {
		return err
	}
	return fmt.Errorf("%w: %w", model.ErrTransport, err)
}

func schemaErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", model.ErrSchema, fmt.Sprintf(format, args...))
}

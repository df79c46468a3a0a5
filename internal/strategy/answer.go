package strategy

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/ppiankov/swarm/internal/model"
)

// AnswerStrategy produces a short open-ended answer per entity, with the
// model's confidence used as the score.
type AnswerStrategy struct {
	searcher Searcher
	scorer   Scorer

	SystemPrompt string
	UserPrompt   string
}

// NewAnswerStrategy creates an answer strategy with the default prompts
func NewAnswerStrategy(searcher Searcher, scorer Scorer) *AnswerStrategy {
	return &AnswerStrategy{
		searcher:     searcher,
		scorer:       scorer,
		SystemPrompt: DefaultAnswerSystem,
		UserPrompt:   DefaultAnswerUser,
	}
}

func (s *AnswerStrategy) Name() string { return NameAnswer }

type answerResponse struct {
	Company    string   `json:"company"`
	Entity     string   `json:"entity"`
	Answer     string   `json:"answer"`
	Confidence *flexInt `json:"confidence"`
}

// Evaluate gathers evidence for entity and asks for an answer to query
func (s *AnswerStrategy) Evaluate(ctx context.Context, query, entity string, templates []model.SearchTemplate) (model.QueryResult, error) {
	evidence, err := GatherEvidence(ctx, s.searcher, entity, templates)
	if err != nil {
		return model.QueryResult{}, err
	}

	raw, err := score(ctx, s.scorer, s.SystemPrompt, renderPrompt(s.UserPrompt, entity, query, evidence))
	if err != nil {
		return model.QueryResult{}, err
	}

	return parseAnswer(raw, query, entity)
}

func parseAnswer(raw json.RawMessage, query, entity string) (model.QueryResult, error) {
	var resp answerResponse
	if err := decode(raw, &resp); err != nil {
		return model.QueryResult{}, err
	}

	answer := strings.TrimSpace(resp.Answer)
	if answer == "" {
		return model.QueryResult{}, schemaErrorf("missing answer")
	}

	confidence, err := resp.Confidence.inRange("confidence")
	if err != nil {
		return model.QueryResult{}, err
	}

	return model.QueryResult{
		Entity: entity,
		Query:  query,
		Score:  model.IntPtr(confidence),
		Reason: answer,
		Answer: answer,
	}, nil
}

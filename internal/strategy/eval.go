package strategy

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/ppiankov/swarm/internal/model"
)

// EvalStrategy decomposes the query into criteria, scores each one and
// folds them into a final score: minimum for "and", maximum for "or".
type EvalStrategy struct {
	searcher Searcher
	scorer   Scorer

	SystemPrompt string
	UserPrompt   string
}

// NewEvalStrategy creates an eval strategy with the default prompts
func NewEvalStrategy(searcher Searcher, scorer Scorer) *EvalStrategy {
	return &EvalStrategy{
		searcher:     searcher,
		scorer:       scorer,
		SystemPrompt: DefaultEvalSystem,
		UserPrompt:   DefaultEvalUser,
	}
}

func (s *EvalStrategy) Name() string { return NameEval }

type criterionResponse struct {
	Criteria string   `json:"criteria"`
	Score    *flexInt `json:"score"`
	Reason   string   `json:"reason"`
}

type evalResponse struct {
	Company     string              `json:"company"`
	Query       string              `json:"query"`
	Criteria    []criterionResponse `json:"criteria_decomposition"`
	Misspelled  []criterionResponse `json:"crieria_decomposition"`
	Combination string              `json:"combination"`
	FinalScore  *flexInt            `json:"final_score"`
	Reason      string              `json:"reason"`
}

// Evaluate gathers evidence for entity and scores it against query
func (s *EvalStrategy) Evaluate(ctx context.Context, query, entity string, templates []model.SearchTemplate) (model.QueryResult, error) {
	evidence, err := GatherEvidence(ctx, s.searcher, entity, templates)
	if err != nil {
		return model.QueryResult{}, err
	}

	raw, err := score(ctx, s.scorer, s.SystemPrompt, renderPrompt(s.UserPrompt, entity, query, evidence))
	if err != nil {
		return model.QueryResult{}, err
	}

	return parseEval(raw, query, entity)
}

func parseEval(raw json.RawMessage, query, entity string) (model.QueryResult, error) {
	var resp evalResponse
	if err := decode(raw, &resp); err != nil {
		return model.QueryResult{}, err
	}

	decomposition := resp.Criteria
	if len(decomposition) == 0 {
		decomposition = resp.Misspelled
	}

	criteria := make([]model.Criterion, 0, len(decomposition))
	scores := make([]int, 0, len(decomposition))
	for _, c := range decomposition {
		v, err := c.Score.inRange("criterion score")
		if err != nil {
			return model.QueryResult{}, err
		}
		criteria = append(criteria, model.Criterion{Name: c.Criteria, Score: v, Reason: c.Reason})
		scores = append(scores, v)
	}

	op := model.Combination(strings.ToLower(strings.TrimSpace(resp.Combination)))

	final, combined := Combine(op, scores)
	if !combined {
		v, err := resp.FinalScore.inRange("final_score")
		if err != nil {
			return model.QueryResult{}, err
		}
		final = v
		op = ""
	}

	return model.QueryResult{
		Entity:      entity,
		Query:       query,
		Score:       model.IntPtr(final),
		Reason:      resp.Reason,
		Combination: op,
		Criteria:    criteria,
	}, nil
}

// Combine folds criterion scores under op. It reports false when op is not
// a known combination or there is nothing to combine.
func Combine(op model.Combination, scores []int) (int, bool) {
	if len(scores) == 0 {
		return 0, false
	}

	switch op {
	case model.CombineAnd:
		out := scores[0]
		for _, s := range scores[1:] {
			out = min(out, s)
		}
		return out, true
	case model.CombineOr:
		out := scores[0]
		for _, s := range scores[1:] {
			out = max(out, s)
		}
		return out, true
	default:
		return 0, false
	}
}

package model

import (
	"sort"
	"time"
)

// DefaultThreshold is the conventional caller-side cut-off: only results
// scoring strictly above it are kept for display.
const DefaultThreshold = 50

// QueryResult is the structured outcome of evaluating one entity.
// It is produced once per successfully processed entity.
type QueryResult struct {
	Entity string `json:"company"`          // Entity identifier as passed to research
	Query  string `json:"query,omitempty"`  // Natural-language query that was evaluated
	Score  *int   `json:"final_score"`      // 0-100, nil when the strategy produced no score
	Reason string `json:"reason,omitempty"` // Short justification or answer text

	// Answer is set by the answer strategy (the 10-20 word answer)
	Answer string `json:"answer,omitempty"`

	// Combination is "and" or "or" when the eval strategy decomposed the query
	Combination Combination `json:"combination,omitempty"`

	// Criteria is the optional per-criterion breakdown
	Criteria []Criterion `json:"criteria_decomposition,omitempty"`
}

// ScoreValue returns the score, or -1 when there is none
func (r QueryResult) ScoreValue() int {
	if r.Score == nil {
		return -1
	}
	return *r.Score
}

// Criterion is one independently scored condition of a decomposed query
type Criterion struct {
	Name   string `json:"criteria"`
	Score  int    `json:"score"`
	Reason string `json:"reason,omitempty"`
}

// Combination selects how criterion scores fold into the final score
type Combination string

const (
	CombineAnd Combination = "and" // Conjunctive: minimum of criteria
	CombineOr  Combination = "or"  // Disjunctive: maximum of criteria
)

// Failure records an entity whose task failed. At most one is produced per
// entity occurrence.
type Failure struct {
	Entity string `json:"entity"`
	Error  string `json:"error"`
	Err    error  `json:"-"`
}

// Outcome is everything one research call produced.
// Results and Failures together account for every input entity.
type Outcome struct {
	RunID    string        `json:"run_id"`
	Query    string        `json:"query"`
	Results  []QueryResult `json:"results"`
	Failures []Failure     `json:"failures,omitempty"`
	Started  time.Time     `json:"started"`
	Duration time.Duration `json:"duration"`
}

// IntPtr returns a pointer to v
func IntPtr(v int) *int {
	return &v
}

// Rank sorts results by score descending and keeps those scoring strictly
// above threshold. Results without a score are dropped. The input slice is
// not modified.
func Rank(results []QueryResult, threshold int) []QueryResult {
	ranked := make([]QueryResult, 0, len(results))
	for _, r := range results {
		if r.Score != nil && *r.Score > threshold {
			ranked = append(ranked, r)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return *ranked[i].Score > *ranked[j].Score
	})

	return ranked
}

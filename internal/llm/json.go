package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ppiankov/swarm/internal/model"
)

// extractJSON pulls the JSON object out of a model reply. Replies wrapped in
// markdown fences or surrounded by prose are accepted.
func extractJSON(text string) (json.RawMessage, error) {
	s := strings.TrimSpace(text)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return nil, fmt.Errorf("%w: no JSON object in reply: %.80q", model.ErrSchema, text)
	}

	obj := s[start : end+1]
	if !json.Valid([]byte(obj)) {
		return nil, fmt.Errorf("%w: invalid JSON in reply: %.80q", model.ErrSchema, text)
	}

	return json.RawMessage(obj), nil
}

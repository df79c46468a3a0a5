package strategy

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// flexInt decodes a score that the model may emit as a number or as a
// numeric string ("85", "85.0"). Fractions are truncated.
type flexInt struct {
	Value int
	Set   bool
}

func (f *flexInt) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*f = flexInt{}
		return nil
	}

	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(str), "%"))
	}

	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return fmt.Errorf("not a number: %s", string(data))
	}

	*f = flexInt{Value: int(n), Set: true}
	return nil
}

// inRange validates a decoded score against [0, 100]
func (f *flexInt) inRange(field string) (int, error) {
	if f == nil || !f.Set {
		return 0, schemaErrorf("missing %s", field)
	}
	if f.Value < 0 || f.Value > 100 {
		return 0, schemaErrorf("%s %d outside [0, 100]", field, f.Value)
	}
	return f.Value, nil
}

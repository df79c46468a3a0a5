package llm

import "sync/atomic"

// Token prices in USD per million tokens
const (
	InputPricePerMillion  = 0.30
	OutputPricePerMillion = 1.20
)

// Usage is a snapshot of the tokens consumed by a provider
type Usage struct {
	Calls        int64 `json:"calls"`
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}

// Cost estimates the spend in USD
func (u Usage) Cost() float64 {
	return float64(u.InputTokens)*InputPricePerMillion/1e6 +
		float64(u.OutputTokens)*OutputPricePerMillion/1e6
}

// usageCounter is safe for use by every worker at once
type usageCounter struct {
	calls  atomic.Int64
	input  atomic.Int64
	output atomic.Int64
}

func (c *usageCounter) record(input, output int) {
	c.calls.Add(1)
	c.input.Add(int64(input))
	c.output.Add(int64(output))
}

func (c *usageCounter) snapshot() Usage {
	return Usage{
		Calls:        c.calls.Load(),
		InputTokens:  c.input.Load(),
		OutputTokens: c.output.Load(),
	}
}

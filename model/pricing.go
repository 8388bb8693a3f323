package model

import ai "github.com/spetersoncode/flowgate"

// Pricing is the USD price per million tokens.
type Pricing struct {
	InputPerMillion  float64
	OutputPerMillion float64
}

// Cost estimates the USD cost of usage.
func (p Pricing) Cost(usage ai.Usage) float64 {
	return float64(usage.InputTokens)/1_000_000*p.InputPerMillion +
		float64(usage.OutputTokens)/1_000_000*p.OutputPerMillion
}

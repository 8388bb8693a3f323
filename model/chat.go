// Package model lists known chat models with their list prices, so a run's
// token usage can be turned into a cost estimate.
package model

import (
	"strings"

	ai "github.com/spetersoncode/flowgate"
)

// ChatModel is a chat model offered by a provider.
type ChatModel struct {
	ID       string
	Provider ai.Provider
	Pricing  Pricing
}

// String returns the API identifier.
func (m ChatModel) String() string { return m.ID }

// Cost estimates the USD cost of usage on this model.
func (m ChatModel) Cost(usage ai.Usage) float64 { return m.Pricing.Cost(usage) }

// Prices last checked December 2025.
var (
	ClaudeOpus45   = ChatModel{ID: "claude-opus-4-5", Provider: ai.ProviderAnthropic, Pricing: Pricing{5.00, 25.00}}
	ClaudeSonnet45 = ChatModel{ID: "claude-sonnet-4-5", Provider: ai.ProviderAnthropic, Pricing: Pricing{3.00, 15.00}}
	ClaudeHaiku45  = ChatModel{ID: "claude-haiku-4-5", Provider: ai.ProviderAnthropic, Pricing: Pricing{1.00, 5.00}}

	GPT4o     = ChatModel{ID: "gpt-4o", Provider: ai.ProviderOpenAI, Pricing: Pricing{2.50, 10.00}}
	GPT4oMini = ChatModel{ID: "gpt-4o-mini", Provider: ai.ProviderOpenAI, Pricing: Pricing{0.15, 0.60}}
	GPT5      = ChatModel{ID: "gpt-5", Provider: ai.ProviderOpenAI, Pricing: Pricing{1.25, 10.00}}
	GPT5Mini  = ChatModel{ID: "gpt-5-mini", Provider: ai.ProviderOpenAI, Pricing: Pricing{0.25, 2.00}}

	Gemini25Pro       = ChatModel{ID: "gemini-2.5-pro", Provider: ai.ProviderGoogle, Pricing: Pricing{1.25, 10.00}}
	Gemini25Flash     = ChatModel{ID: "gemini-2.5-flash", Provider: ai.ProviderGoogle, Pricing: Pricing{0.30, 2.50}}
	Gemini25FlashLite = ChatModel{ID: "gemini-2.5-flash-lite", Provider: ai.ProviderGoogle, Pricing: Pricing{0.10, 0.40}}
)

var catalog = []ChatModel{
	ClaudeOpus45, ClaudeSonnet45, ClaudeHaiku45,
	GPT4o, GPT4oMini, GPT5, GPT5Mini,
	Gemini25Pro, Gemini25Flash, Gemini25FlashLite,
}

// Lookup finds a model by ID. Dated snapshots such as
// "claude-haiku-4-5-20251001" or "gpt-4o-2024-08-06" match their base
// model; the longest matching ID wins.
func Lookup(id string) (ChatModel, bool) {
	var best ChatModel
	found := false
	for _, m := range catalog {
		if id != m.ID && !strings.HasPrefix(id, m.ID+"-") {
			continue
		}
		if !found || len(m.ID) > len(best.ID) {
			best, found = m, true
		}
	}
	return best, found
}

// Default returns the model a provider uses when none is configured.
// Azure deployments are named by the user, so Azure has no default.
func Default(p ai.Provider) (ChatModel, bool) {
	switch p {
	case ai.ProviderAnthropic:
		return ClaudeSonnet45, true
	case ai.ProviderOpenAI:
		return GPT4o, true
	case ai.ProviderGoogle, ai.ProviderVertex:
		return Gemini25Flash, true
	}
	return ChatModel{}, false
}

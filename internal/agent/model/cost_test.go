package model

import (
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
)

func TestComputeCost(t *testing.T) {
	usage := &schema.TokenUsage{PromptTokens: 2_000_000, CompletionTokens: 100_000, TotalTokens: 2_100_000}

	in, out, total := ComputeCost(usage, ResolvePricing("gemini-2.5-pro"))
	assert.InDelta(t, 2.5, in, 1e-9)
	assert.InDelta(t, 1.0, out, 1e-9)
	assert.InDelta(t, 3.5, total, 1e-9)
}

func TestComputeCostUnknownModelIsFree(t *testing.T) {
	_, _, total := ComputeCost(&schema.TokenUsage{PromptTokens: 1000}, ResolvePricing("some-local-model"))
	assert.Zero(t, total)
}

func TestComputeCostNilUsage(t *testing.T) {
	in, out, total := ComputeCost(nil, ResolvePricing("gemini-2.5-pro"))
	assert.Zero(t, in)
	assert.Zero(t, out)
	assert.Zero(t, total)
}

func TestUsageAdd(t *testing.T) {
	var u Usage
	u.Add(&schema.TokenUsage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15}, 0.25)
	u.Add(nil, 0)
	u.Add(&schema.TokenUsage{PromptTokens: 1, CompletionTokens: 1, TotalTokens: 2}, 0.5)

	assert.Equal(t, Usage{PromptTokens: 11, CompletionTokens: 6, TotalTokens: 17, CostUSD: 0.75, ModelCalls: 3}, u)
}

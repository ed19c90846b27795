// Package classify adapts the external language model into the fixed-shape
// classification contract. The model output is untrusted and validated
// before any routing decision uses it.
package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/compose"

	contractx "github.com/kritsadas/Feastly-Hybrid-Support-Agent/agent/contract"
	openaiclientx "github.com/kritsadas/Feastly-Hybrid-Support-Agent/pkg/openaiclient"
)

type classifierLLMOutput struct {
	IntentTag  string            `json:"intent_tag"`
	Entities   map[string]string `json:"entities,omitempty"`
	Confidence float64           `json:"confidence"`
}

type LLMClassifier struct {
	runner compose.Runnable[map[string]any, classifierLLMOutput]
}

var _ contractx.Classifier = (*LLMClassifier)(nil)

func NewLLMClassifier(ctx context.Context, builder openaiclientx.LLMBuilder, systemPrompt string) (*LLMClassifier, error) {
	if builder == nil {
		return nil, fmt.Errorf("%w: llm builder is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(systemPrompt) == "" {
		return nil, fmt.Errorf("%w: classifier prompt is empty", contractx.ErrValidation)
	}

	chatModel, err := builder.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create classifier model: %v", contractx.ErrModelInvoke, err)
	}

	runner, err := compileClassifierGraph(ctx, chatModel, systemPrompt)
	if err != nil {
		return nil, err
	}

	return &LLMClassifier{runner: runner}, nil
}

func (c *LLMClassifier) Classify(ctx context.Context, message string, history []string) (contractx.Classification, error) {
	if strings.TrimSpace(message) == "" {
		return contractx.Classification{}, fmt.Errorf("%w: message is required", contractx.ErrValidation)
	}

	payload := map[string]any{
		"message": message,
		"history": history,
	}
	input, err := json.Marshal(payload)
	if err != nil {
		return contractx.Classification{}, fmt.Errorf("%w: marshal classifier payload: %v", contractx.ErrValidation, err)
	}

	out, err := c.runner.Invoke(ctx, map[string]any{
		"input": string(input),
	})
	if err != nil {
		return contractx.Classification{}, fmt.Errorf("%w: classifier invoke: %v", contractx.ErrModelInvoke, err)
	}

	return validateOutput(out)
}

func validateOutput(out classifierLLMOutput) (contractx.Classification, error) {
	if out.Confidence < 0 || out.Confidence > 1 {
		return contractx.Classification{}, fmt.Errorf("%w: confidence=%v out of range", contractx.ErrSchemaViolation, out.Confidence)
	}

	entities := make(map[string]string, len(out.Entities))
	for k, v := range out.Entities {
		key := strings.TrimSpace(strings.ToLower(k))
		val := strings.TrimSpace(v)
		if key == "" || val == "" {
			continue
		}
		entities[key] = val
	}

	return contractx.Classification{
		Intent:     normalizeIntent(out.IntentTag),
		Entities:   entities,
		Confidence: out.Confidence,
	}, nil
}

// normalizeIntent maps unrecognized tags to IntentUnknown instead of
// failing; the dispatcher escalates unknowns.
func normalizeIntent(tag string) contractx.IntentTag {
	switch contractx.IntentTag(strings.TrimSpace(strings.ToLower(tag))) {
	case contractx.IntentTrackOrder:
		return contractx.IntentTrackOrder
	case contractx.IntentRefund:
		return contractx.IntentRefund
	case contractx.IntentFAQ:
		return contractx.IntentFAQ
	case contractx.IntentGeneral:
		return contractx.IntentGeneral
	default:
		return contractx.IntentUnknown
	}
}

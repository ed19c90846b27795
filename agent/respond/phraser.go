package respond

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	contractx "github.com/kritsadas/Feastly-Hybrid-Support-Agent/agent/contract"
	openaiclientx "github.com/kritsadas/Feastly-Hybrid-Support-Agent/pkg/openaiclient"
)

// LLMPhraser turns an envelope into the final customer-facing reply using
// the external chat model. Its failure is tolerated by the dispatcher.
type LLMPhraser struct {
	runner compose.Runnable[map[string]any, *schema.Message]
}

var _ contractx.Phraser = (*LLMPhraser)(nil)

func NewLLMPhraser(ctx context.Context, builder openaiclientx.LLMBuilder, systemPrompt string) (*LLMPhraser, error) {
	if builder == nil {
		return nil, fmt.Errorf("%w: llm builder is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(systemPrompt) == "" {
		return nil, fmt.Errorf("%w: phraser prompt is empty", contractx.ErrValidation)
	}

	chatModel, err := builder.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create phraser model: %v", contractx.ErrModelInvoke, err)
	}

	runner, err := compilePhraserGraph(ctx, chatModel, systemPrompt)
	if err != nil {
		return nil, err
	}

	return &LLMPhraser{runner: runner}, nil
}

func (p *LLMPhraser) Phrase(ctx context.Context, userMessage string, env contractx.Envelope) (string, error) {
	payload := map[string]any{
		"user_message": userMessage,
		"envelope":     env,
	}
	input, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("%w: marshal phraser payload: %v", contractx.ErrValidation, err)
	}

	msg, err := p.runner.Invoke(ctx, map[string]any{
		"input": string(input),
	})
	if err != nil {
		return "", fmt.Errorf("%w: phraser invoke: %v", contractx.ErrModelInvoke, err)
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return "", fmt.Errorf("%w: phraser returned empty reply", contractx.ErrSchemaViolation)
	}
	return strings.TrimSpace(msg.Content), nil
}

func compilePhraserGraph(
	ctx context.Context,
	chatModel einomodel.BaseChatModel,
	systemPrompt string,
) (compose.Runnable[map[string]any, *schema.Message], error) {
	template := einoprompt.FromMessages(
		schema.FString,
		schema.SystemMessage(systemPrompt),
		schema.UserMessage("{input}"),
	)

	graph := compose.NewGraph[map[string]any, *schema.Message]()
	if err := graph.AddChatTemplateNode("prompt", template); err != nil {
		return nil, fmt.Errorf("add phraser prompt node: %w", err)
	}
	if err := graph.AddChatModelNode("model", chatModel); err != nil {
		return nil, fmt.Errorf("add phraser model node: %w", err)
	}
	if err := graph.AddEdge(compose.START, "prompt"); err != nil {
		return nil, fmt.Errorf("add phraser edge start->prompt: %w", err)
	}
	if err := graph.AddEdge("prompt", "model"); err != nil {
		return nil, fmt.Errorf("add phraser edge prompt->model: %w", err)
	}
	if err := graph.AddEdge("model", compose.END); err != nil {
		return nil, fmt.Errorf("add phraser edge model->end: %w", err)
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("phraser.model_graph"))
	if err != nil {
		return nil, fmt.Errorf("compile phraser graph: %w", err)
	}
	return runner, nil
}

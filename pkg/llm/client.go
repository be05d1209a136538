package llm

import (
	"context"
	"fmt"

	openai "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/codeready-toolchain/dataq/pkg/config"
)

// OpenAIClient is the concrete Client backed by the OpenAI chat
// completions API. It satisfies the channel-based Client interface by
// emitting the whole response as a single TextChunk followed by a
// UsageChunk, which is sufficient for the turn-based prompts the
// workflow engine issues (it never needs token-by-token delivery).
type OpenAIClient struct {
	raw   openai.Client
	model string
}

// NewOpenAIClient builds a Client from the llm section of Config.
func NewOpenAIClient(cfg config.LLMConfig, apiKey string) *OpenAIClient {
	opts := []option.RequestOption{}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &OpenAIClient{
		raw:   openai.NewClient(opts...),
		model: cfg.Model,
	}
}

// Generate issues one chat completion call and streams its result back
// as a two-chunk sequence on the returned channel.
func (c *OpenAIClient) Generate(ctx context.Context, input *GenerateInput) (<-chan Chunk, error) {
	out := make(chan Chunk, 2)

	model := input.Model
	if model == "" {
		model = c.model
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(input.Messages))
	for _, m := range input.Messages {
		switch m.Role {
		case RoleSystem:
			messages = append(messages, openai.SystemMessage(m.Content))
		case RoleAssistant:
			messages = append(messages, openai.AssistantMessage(m.Content))
		default:
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(model),
		Messages: messages,
	}
	if input.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(input.MaxTokens))
	}
	if input.Temperature > 0 {
		params.Temperature = openai.Float(input.Temperature)
	}

	go func() {
		defer close(out)

		resp, err := c.raw.Chat.Completions.New(ctx, params)
		if err != nil {
			out <- &ErrorChunk{Message: err.Error(), Retryable: true}
			return
		}
		if len(resp.Choices) == 0 {
			out <- &ErrorChunk{Message: "provider returned no choices", Retryable: true}
			return
		}

		out <- &TextChunk{Content: resp.Choices[0].Message.Content}
		out <- &UsageChunk{
			InputTokens:  int(resp.Usage.PromptTokens),
			OutputTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:  int(resp.Usage.TotalTokens),
		}
	}()

	return out, nil
}

// Close is a no-op: the OpenAI SDK client holds no persistent connection.
func (c *OpenAIClient) Close() error {
	return nil
}

// Collect drains a Generate channel into plain text and usage, the
// shape the prompt adapter works with. It returns an error built from
// the first ErrorChunk encountered, if any.
func Collect(ch <-chan Chunk) (string, UsageChunk, error) {
	var text string
	var usage UsageChunk
	for chunk := range ch {
		switch v := chunk.(type) {
		case *TextChunk:
			text += v.Content
		case *UsageChunk:
			usage = *v
		case *ErrorChunk:
			return "", usage, fmt.Errorf("llm provider error: %s", v.Message)
		}
	}
	return text, usage, nil
}

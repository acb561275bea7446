package openrouter

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"

	"medi-cal-assistant/internal/application/port/output"
	"medi-cal-assistant/internal/domain/entity"

	"github.com/sashabaranov/go-openai"
)

var _ output.LLMPort = (*OpenRouterAdapter)(nil)

const imageResultNote = "Image attached in the next message."

type OpenRouterAdapter struct {
	client *openai.Client
	model  string
	logger output.LoggerPort
}

type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Logger  output.LoggerPort
}

func DefaultConfig(apiKey, model string) Config {
	return Config{
		APIKey:  apiKey,
		Model:   model,
		BaseURL: "https://openrouter.ai/api/v1",
	}
}

type loggingTransport struct {
	base   http.RoundTripper
	logger output.LoggerPort
}

// RoundTrip logs request metadata only; bodies carry base64 screenshots.
func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.logger.Debug("HTTP Request",
		"method", req.Method,
		"url", req.URL.String(),
		"contentLength", req.ContentLength,
	)

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		t.logger.Warn("HTTP Request failed", "url", req.URL.String(), "error", err)
		return nil, err
	}

	t.logger.Debug("HTTP Response",
		"status", resp.Status,
		"statusCode", resp.StatusCode,
	)
	return resp, nil
}

func NewOpenRouterAdapter(cfg Config) *OpenRouterAdapter {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	if cfg.Logger != nil {
		config.HTTPClient = &http.Client{
			Transport: &loggingTransport{
				base:   http.DefaultTransport,
				logger: cfg.Logger,
			},
		}
	}

	return &OpenRouterAdapter{
		client: openai.NewClientWithConfig(config),
		model:  cfg.Model,
		logger: cfg.Logger,
	}
}

func (a *OpenRouterAdapter) Chat(ctx context.Context, req output.ChatRequest) (*output.ChatResponse, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     a.model,
		Messages:  convertTurns(req.System, req.Turns),
		Tools:     convertTools(req.Tools),
		MaxTokens: req.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	turn, badArgs := convertResponseMessage(resp.Choices[0].Message)
	if len(badArgs) > 0 && a.logger != nil {
		a.logger.Warn("Tool call arguments are not a JSON object", "calls", badArgs)
	}
	return &output.ChatResponse{Turn: turn}, nil
}

func convertTurns(system string, turns []entity.Turn) []openai.ChatCompletionMessage {
	result := make([]openai.ChatCompletionMessage, 0, len(turns)+1)
	if system != "" {
		result = append(result, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}

	for _, turn := range turns {
		switch turn.Role {
		case entity.RoleUser:
			result = append(result, userMessage(turn.Parts))
		case entity.RoleAssistant:
			result = append(result, assistantMessage(turn))
		case entity.RoleTool:
			result = append(result, toolMessages(turn)...)
		}
	}
	return result
}

func userMessage(parts []entity.Part) openai.ChatCompletionMessage {
	msg := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser}

	hasImage := false
	for _, p := range parts {
		if p.Type == entity.PartImage {
			hasImage = true
			break
		}
	}
	if !hasImage {
		msg.Content = entity.Turn{Parts: parts}.Text()
		return msg
	}

	for _, p := range parts {
		switch {
		case p.Type == entity.PartText && p.Text != "":
			msg.MultiContent = append(msg.MultiContent, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeText,
				Text: p.Text,
			})
		case p.Type == entity.PartImage && p.Image != nil:
			msg.MultiContent = append(msg.MultiContent, imagePart(*p.Image))
		}
	}
	return msg
}

func imagePart(img entity.Image) openai.ChatMessagePart {
	return openai.ChatMessagePart{
		Type: openai.ChatMessagePartTypeImageURL,
		ImageURL: &openai.ChatMessageImageURL{
			URL:    "data:" + img.MediaType + ";base64," + base64.StdEncoding.EncodeToString(img.Data),
			Detail: openai.ImageURLDetailAuto,
		},
	}
}

func assistantMessage(turn entity.Turn) openai.ChatCompletionMessage {
	msg := openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleAssistant,
		Content: turn.Text(),
	}
	for _, tc := range turn.ToolCalls() {
		args, err := json.Marshal(tc.Input)
		if err != nil || tc.Input == nil {
			args = []byte("{}")
		}
		msg.ToolCalls = append(msg.ToolCalls, openai.ToolCall{
			ID:   tc.ID,
			Type: openai.ToolTypeFunction,
			Function: openai.FunctionCall{
				Name:      tc.Name,
				Arguments: string(args),
			},
		})
	}
	return msg
}

// toolMessages emits one tool message per result. Chat completions only
// accept text in tool messages, so images follow in a single user message.
func toolMessages(turn entity.Turn) []openai.ChatCompletionMessage {
	var (
		result []openai.ChatCompletionMessage
		images []openai.ChatMessagePart
	)
	for _, p := range turn.Parts {
		if p.Type != entity.PartToolResult || p.ToolResult == nil {
			continue
		}
		out := p.ToolResult.Outcome
		content := out.Text
		if out.Kind == entity.OutcomeImage && out.Image != nil {
			content = imageResultNote
			images = append(images, imagePart(*out.Image))
		}
		result = append(result, openai.ChatCompletionMessage{
			Role:       openai.ChatMessageRoleTool,
			ToolCallID: p.ToolResult.CallID,
			Content:    content,
		})
	}
	if len(images) > 0 {
		result = append(result, openai.ChatCompletionMessage{
			Role:         openai.ChatMessageRoleUser,
			MultiContent: images,
		})
	}
	return result
}

func convertTools(tools []entity.ToolDefinition) []openai.Tool {
	result := make([]openai.Tool, 0, len(tools))
	for _, t := range tools {
		result = append(result, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}
	return result
}

// convertResponseMessage also returns the IDs of tool calls whose
// arguments were not a JSON object; those calls get an empty input.
func convertResponseMessage(msg openai.ChatCompletionMessage) (entity.Turn, []string) {
	turn := entity.Turn{Role: entity.RoleAssistant}
	if msg.Content != "" {
		turn.Parts = append(turn.Parts, entity.TextPart(msg.Content))
	}

	var badArgs []string
	for _, tc := range msg.ToolCalls {
		input := map[string]any{}
		if tc.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(tc.Function.Arguments), &input); err != nil {
				badArgs = append(badArgs, tc.ID)
				input = map[string]any{}
			}
		}
		turn.Parts = append(turn.Parts, entity.ToolUsePart(entity.ToolCall{
			ID:    tc.ID,
			Name:  tc.Function.Name,
			Input: input,
		}))
	}
	return turn, badArgs
}

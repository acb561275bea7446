package output

import (
	"context"

	"medi-cal-assistant/internal/domain/entity"
)

type LLMPort interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

type ChatRequest struct {
	System    string
	Turns     []entity.Turn
	Tools     []entity.ToolDefinition
	MaxTokens int
}

type ChatResponse struct {
	Turn entity.Turn
}

package openrouter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"medi-cal-assistant/internal/application/port/output"
	"medi-cal-assistant/internal/domain/entity"
	"medi-cal-assistant/internal/testutil"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertResponseMessage_WithContent(t *testing.T) {
	msg := openai.ChatCompletionMessage{
		Role:    "assistant",
		Content: "Hello, world!",
	}

	turn, bad := convertResponseMessage(msg)

	assert.Equal(t, entity.RoleAssistant, turn.Role)
	assert.Equal(t, "Hello, world!", turn.Text())
	assert.Empty(t, turn.ToolCalls())
	assert.Empty(t, bad)
}

func TestConvertResponseMessage_WithToolCalls(t *testing.T) {
	msg := openai.ChatCompletionMessage{
		Role: "assistant",
		ToolCalls: []openai.ToolCall{
			{
				ID:   "call_123",
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      "computer",
					Arguments: `{"action":"left_click","coordinate":[100,200]}`,
				},
			},
			{
				ID:       "call_bad",
				Type:     openai.ToolTypeFunction,
				Function: openai.FunctionCall{Name: "computer", Arguments: `not json`},
			},
		},
	}

	turn, bad := convertResponseMessage(msg)

	calls := turn.ToolCalls()
	require.Len(t, calls, 2)
	assert.Equal(t, "call_123", calls[0].ID)
	assert.Equal(t, "computer", calls[0].Name)
	assert.Equal(t, "left_click", calls[0].Input["action"])
	assert.Equal(t, []any{100.0, 200.0}, calls[0].Input["coordinate"])
	assert.Empty(t, calls[1].Input)
	assert.Equal(t, []string{"call_bad"}, bad)
}

func TestConvertTurns_ToolRoundTrip(t *testing.T) {
	img := entity.Image{MediaType: "image/png", Data: []byte{0x89, 'P', 'N', 'G'}}
	turns := []entity.Turn{
		entity.UserText("Fill the city"),
		{Role: entity.RoleAssistant, Parts: []entity.Part{
			entity.ToolUsePart(entity.ToolCall{ID: "a", Name: "computer", Input: map[string]any{"action": "screenshot"}}),
			entity.ToolUsePart(entity.ToolCall{ID: "b", Name: "computer", Input: map[string]any{"action": "type", "text": "Fresno"}}),
		}},
		{Role: entity.RoleTool, Parts: []entity.Part{
			entity.ToolResultPart("a", entity.ImageOutcome(img)),
			entity.ToolResultPart("b", entity.TextOutcome("Typed: Fresno")),
		}},
	}

	result := convertTurns("system prompt", turns)

	require.Len(t, result, 6)
	assert.Equal(t, openai.ChatMessageRoleSystem, result[0].Role)
	assert.Equal(t, "Fill the city", result[1].Content)

	require.Len(t, result[2].ToolCalls, 2)
	assert.JSONEq(t, `{"action":"type","text":"Fresno"}`, result[2].ToolCalls[1].Function.Arguments)

	assert.Equal(t, openai.ChatMessageRoleTool, result[3].Role)
	assert.Equal(t, "a", result[3].ToolCallID)
	assert.Equal(t, imageResultNote, result[3].Content)
	assert.Equal(t, "Typed: Fresno", result[4].Content)

	assert.Equal(t, openai.ChatMessageRoleUser, result[5].Role)
	require.Len(t, result[5].MultiContent, 1)
	assert.True(t, strings.HasPrefix(result[5].MultiContent[0].ImageURL.URL, "data:image/png;base64,"))
}

func TestConvertTurns_NoSystem(t *testing.T) {
	result := convertTurns("", []entity.Turn{entity.AssistantText("Hi")})

	require.Len(t, result, 1)
	assert.Equal(t, "Hi", result[0].Content)
}

func TestConvertTools(t *testing.T) {
	tools := convertTools([]entity.ToolDefinition{{
		Name:        "eligibility_check_medicaid_eligibility",
		Description: "Tool check_medicaid_eligibility from eligibility",
		Parameters:  map[string]any{"type": "object", "additionalProperties": true},
	}})

	require.Len(t, tools, 1)
	assert.Equal(t, openai.ToolTypeFunction, tools[0].Type)
	assert.Equal(t, "eligibility_check_medicaid_eligibility", tools[0].Function.Name)
}

func TestOpenRouterAdapter_Chat(t *testing.T) {
	var got openai.ChatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{{
				Message: openai.ChatCompletionMessage{Role: "assistant", Content: "What's the city?"},
			}},
		})
	}))
	defer server.Close()

	cfg := DefaultConfig("key", "test-model")
	cfg.BaseURL = server.URL
	cfg.Logger = testutil.NopLogger{}
	adapter := NewOpenRouterAdapter(cfg)

	resp, err := adapter.Chat(context.Background(), output.ChatRequest{
		System:    "sys",
		Turns:     []entity.Turn{entity.UserText("hi")},
		MaxTokens: 4096,
	})
	require.NoError(t, err)
	assert.Equal(t, "What's the city?", resp.Turn.Text())
	assert.Equal(t, "test-model", got.Model)
	assert.Equal(t, 4096, got.MaxTokens)
	assert.Len(t, got.Messages, 2)
}

func TestOpenRouterAdapter_ChatError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"boom"}}`, http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := DefaultConfig("key", "m")
	cfg.BaseURL = server.URL
	_, err := NewOpenRouterAdapter(cfg).Chat(context.Background(), output.ChatRequest{})
	assert.Error(t, err)
}

package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"medi-cal-assistant/internal/application/port/input"
	"medi-cal-assistant/internal/application/port/output"
	"medi-cal-assistant/internal/domain/entity"
	"medi-cal-assistant/internal/usecase/textfmt"
)

const (
	// MaxModelCalls bounds the model calls of one user turn. Tool requests
	// in the last call are dropped.
	MaxModelCalls = 3

	DefaultMaxTokens = 4096

	AutoFilledReply = "Auto-filled the requested fields. What else can I help with?"
)

type Config struct {
	MaxTokens     int
	DisplayWidth  int
	DisplayHeight int
}

type Result struct {
	Reply      string
	ModelCalls int
	AutoFilled bool
}

type UseCase struct {
	llm       output.LLMPort
	registry  output.ToolRegistry
	logger    output.LoggerPort
	maxTokens int
	computer  entity.ToolDefinition
}

func New(llm output.LLMPort, registry output.ToolRegistry, logger output.LoggerPort, cfg Config) *UseCase {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.DisplayWidth <= 0 || cfg.DisplayHeight <= 0 {
		cfg.DisplayWidth, cfg.DisplayHeight = DefaultDisplayWidth, DefaultDisplayHeight
	}
	return &UseCase{
		llm:       llm,
		registry:  registry,
		logger:    logger,
		maxTokens: cfg.MaxTokens,
		computer:  ComputerTool(cfg.DisplayWidth, cfg.DisplayHeight),
	}
}

// Run continues the session conversation, whose last turn is the user's,
// until the model answers in text, a tool fills the form, or the call
// budget is spent. Turns are appended to the conversation as they happen,
// so a model error leaves the history up to the failed call.
func (uc *UseCase) Run(ctx context.Context, session *input.Session, system string) (*Result, error) {
	conv := session.Conversation
	tools := append([]entity.ToolDefinition{uc.computer}, uc.registry.Definitions()...)

	for call := 1; call <= MaxModelCalls; call++ {
		uc.logger.Debug("Model call", "session_id", session.ID, "call", call, "turns", conv.Len())

		resp, err := uc.llm.Chat(ctx, output.ChatRequest{
			System:    system,
			Turns:     conv.Turns,
			Tools:     tools,
			MaxTokens: uc.maxTokens,
		})
		if err != nil {
			return nil, fmt.Errorf("model call %d failed: %w", call, err)
		}

		calls := resp.Turn.ToolCalls()
		if len(calls) == 0 || call == MaxModelCalls {
			if len(calls) > 0 {
				uc.logger.Info("Dropping tool requests of the last model call", "session_id", session.ID, "count", len(calls))
			}
			reply := finalText(resp.Turn)
			if reply != "" {
				conv.Append(entity.AssistantText(reply))
			}
			return &Result{Reply: reply, ModelCalls: call}, nil
		}

		uses := make([]entity.Part, 0, len(calls))
		for _, c := range calls {
			uses = append(uses, entity.ToolUsePart(c))
		}
		conv.Append(entity.Turn{Role: entity.RoleAssistant, Parts: uses})

		results := make([]entity.Part, 0, len(calls))
		filled := false
		for _, c := range calls {
			uc.logger.Info("Executing tool", "session_id", session.ID, "name", c.Name, "input", c.Input)
			res := uc.dispatch(ctx, session.Device, c)
			results = append(results, entity.ToolResultPart(c.ID, res.outcome))
			filled = filled || res.filled
		}
		conv.Append(entity.Turn{Role: entity.RoleTool, Parts: results})

		if filled {
			conv.Append(entity.AssistantText(AutoFilledReply))
			return &Result{Reply: AutoFilledReply, ModelCalls: call, AutoFilled: true}, nil
		}
	}

	return nil, fmt.Errorf("model call budget (%d) exceeded", MaxModelCalls)
}

// finalText sanitizes each text part and drops tool requests.
func finalText(turn entity.Turn) string {
	var texts []string
	for _, p := range turn.Parts {
		if p.Type != entity.PartText {
			continue
		}
		if s := textfmt.Sanitize(p.Text); s != "" {
			texts = append(texts, s)
		}
	}
	return strings.Join(texts, "\n")
}

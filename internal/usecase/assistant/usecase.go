package assistant

import (
	"context"
	"fmt"
	"strings"

	"medi-cal-assistant/internal/application/port/input"
	"medi-cal-assistant/internal/application/port/output"
	"medi-cal-assistant/internal/domain/entity"
	"medi-cal-assistant/internal/infrastructure/prompts"
	"medi-cal-assistant/internal/usecase/heuristics"
	"medi-cal-assistant/internal/usecase/orchestrator"
	"medi-cal-assistant/internal/usecase/textfmt"
)

var _ input.TurnProcessor = (*UseCase)(nil)

// Shortcut may answer a turn with a navigation action before the model runs.
type Shortcut interface {
	Try(ctx context.Context, query string) (*input.TurnResult, bool)
}

type UseCase struct {
	heuristics           heuristics.Matcher
	shortcut             Shortcut
	orchestrator         *orchestrator.UseCase
	transcripts          output.TranscriptStore
	logger               output.LoggerPort
	systemPromptTemplate string
}

func New(
	matcher heuristics.Matcher,
	shortcut Shortcut,
	orch *orchestrator.UseCase,
	transcripts output.TranscriptStore,
	logger output.LoggerPort,
	systemPromptTemplate string,
) *UseCase {
	return &UseCase{
		heuristics:           matcher,
		shortcut:             shortcut,
		orchestrator:         orch,
		transcripts:          transcripts,
		logger:               logger,
		systemPromptTemplate: systemPromptTemplate,
	}
}

// ProcessTurn runs one user turn through the heuristics, the eligibility
// shortcut and finally the model loop.
func (uc *UseCase) ProcessTurn(ctx context.Context, session *input.Session, req input.TurnRequest) (*input.TurnResult, error) {
	conv := session.Conversation
	start := conv.Len()
	conv.Append(entity.UserText(req.Text))
	defer uc.archive(ctx, session, start)

	log := session.Logger
	if log == nil {
		log = uc.logger
	}

	if out := uc.heuristics.Match(ctx, heuristics.FromSession(session, req.Text)); out.OK() {
		log.Info("Turn answered by heuristics")
		return uc.reply(conv, out.Reply, req.Verbosity, 0), nil
	}

	if uc.shortcut != nil {
		if res, ok := uc.shortcut.Try(ctx, req.Text); ok {
			conv.Append(entity.AssistantText(res.Message))
			return res, nil
		}
	}

	system, err := prompts.GenerateSystemPrompt(uc.systemPromptTemplate, req.Lang, req.Verbosity == input.VerbosityConcise)
	if err != nil {
		return nil, fmt.Errorf("failed to generate system prompt: %w", err)
	}

	res, err := uc.orchestrator.Run(ctx, session, system)
	if err != nil {
		log.Error("Turn failed", "error", err)
		return nil, err
	}
	log.Info("Turn completed", "model_calls", res.ModelCalls, "auto_filled", res.AutoFilled)

	if res.Reply == "" {
		return &input.TurnResult{ModelCalls: res.ModelCalls}, nil
	}
	return uc.reply(conv, res.Reply, req.Verbosity, res.ModelCalls), nil
}

// reply appends text as the assistant turn, or rewrites the turn the
// model loop already appended, in the requested verbosity.
func (uc *UseCase) reply(conv *entity.Conversation, text string, verbosity input.Verbosity, calls int) *input.TurnResult {
	if verbosity == input.VerbosityConcise {
		if concise := textfmt.FormatConcise(text); strings.TrimSpace(concise) != "" {
			text = concise
		}
	}
	if calls == 0 {
		conv.Append(entity.AssistantText(text))
	} else {
		conv.ReplaceLastText(text)
	}
	return &input.TurnResult{Response: text, ModelCalls: calls}
}

func (uc *UseCase) archive(ctx context.Context, session *input.Session, from int) {
	if uc.transcripts == nil {
		return
	}
	turns := session.Conversation.Turns[from:]
	if err := uc.transcripts.Append(ctx, session.ID, turns...); err != nil {
		uc.logger.Warn("Failed to archive transcript", "session_id", session.ID, "error", err)
	}
}

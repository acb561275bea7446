package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"medi-cal-assistant/internal/application/port/input"
	"medi-cal-assistant/internal/application/port/output"
	"medi-cal-assistant/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	ActionMessage     = "message"
	ActionPlanAnswers = "plan_answers"
	ActionScreenshot  = "screenshot"
	ActionError       = "error"
)

type inboundMessage struct {
	Action    string          `json:"action"`
	Text      string          `json:"text"`
	Answers   json.RawMessage `json:"answers"`
	Name      string          `json:"name"`
	URL       string          `json:"url"`
	Lang      string          `json:"lang"`
	Verbosity string          `json:"verbosity"`
}

type replyMessage struct {
	Response string `json:"response"`
}

type actionMessage struct {
	Action   string                  `json:"action"`
	URL      string                  `json:"url,omitempty"`
	Message  string                  `json:"message"`
	Actions  []entity.ScriptedAction `json:"actions,omitempty"`
	Messages []messageView           `json:"messages,omitempty"`
}

type messageView struct {
	Role    entity.Role `json:"role"`
	Content string      `json:"content"`
}

// Handler runs one assistant session per websocket connection. Turns of a
// session are processed strictly in order on the connection's goroutine.
type Handler struct {
	processor input.TurnProcessor
	devices   output.DeviceFactory
	logger    output.LoggerPort
	upgrader  websocket.Upgrader
}

func NewHandler(processor input.TurnProcessor, devices output.DeviceFactory, logger output.LoggerPort) *Handler {
	return &Handler{
		processor: processor,
		devices:   devices,
		logger:    logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("Websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	id := uuid.New().String()
	log := h.logger.WithField("session_id", id)

	device, err := h.devices(ctx)
	if err != nil {
		log.Error("Failed to open device session", "error", err)
		_ = conn.WriteJSON(errorMessage(err, nil))
		return
	}
	defer func() {
		if err := device.Close(); err != nil {
			log.Warn("Failed to close device session", "error", err)
		}
	}()

	session := input.NewSession(id, device, log)
	log.Info("Session started", "backend", device.Mode())

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("Websocket closed unexpectedly", "error", err)
			}
			break
		}

		if err := conn.WriteJSON(h.handle(ctx, session, data)); err != nil {
			log.Warn("Failed to write reply", "error", err)
			break
		}
	}
	log.Info("Session ended", "turns", session.Conversation.Len())
}

func (h *Handler) handle(ctx context.Context, session *input.Session, data []byte) any {
	req := decodeRequest(data)
	result, err := h.processor.ProcessTurn(ctx, session, req)
	if err != nil {
		return errorMessage(err, session.Conversation)
	}
	if result.Action != "" {
		return actionMessage{
			Action:   result.Action,
			URL:      result.URL,
			Message:  result.Message,
			Actions:  result.Actions,
			Messages: messageViews(session.Conversation),
		}
	}
	return replyMessage{Response: result.Response}
}

// decodeRequest turns a frame into a turn request. Frames that are not a
// JSON object are treated as plain message text.
func decodeRequest(data []byte) input.TurnRequest {
	var msg inboundMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return input.TurnRequest{Text: string(data), Verbosity: input.VerbosityNormal}
	}

	req := input.TurnRequest{Lang: msg.Lang, Verbosity: input.VerbosityNormal}
	if strings.EqualFold(msg.Verbosity, string(input.VerbosityConcise)) {
		req.Verbosity = input.VerbosityConcise
	}

	switch msg.Action {
	case ActionPlanAnswers:
		answers := strings.TrimSpace(string(msg.Answers))
		if answers == "" || answers == "null" {
			answers = "{}"
		}
		req.Text = "Plan answers: " + answers
	case ActionScreenshot:
		req.Text = fmt.Sprintf("User provided screenshot '%s': %s", msg.Name, msg.URL)
	default:
		req.Text = msg.Text
	}
	return req
}

func errorMessage(err error, conv *entity.Conversation) actionMessage {
	return actionMessage{
		Action:   ActionError,
		Message:  "Error processing query: " + err.Error(),
		Messages: messageViews(conv),
	}
}

// messageViews renders the text of each turn; tool traffic is left out.
func messageViews(conv *entity.Conversation) []messageView {
	if conv == nil {
		return nil
	}
	views := make([]messageView, 0, conv.Len())
	for _, t := range conv.Turns {
		if t.Role == entity.RoleTool {
			continue
		}
		if text := t.Text(); text != "" {
			views = append(views, messageView{Role: t.Role, Content: text})
		}
	}
	return views
}

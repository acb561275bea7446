package input

import (
	"medi-cal-assistant/internal/application/port/output"
	"medi-cal-assistant/internal/domain/entity"
)

// Session is the per-connection state threaded through every turn.
type Session struct {
	ID           string
	Conversation *entity.Conversation
	Progress     *entity.FormProgress
	Device       output.DevicePort
	Logger       output.LoggerPort
}

func NewSession(id string, device output.DevicePort, logger output.LoggerPort) *Session {
	return &Session{
		ID:           id,
		Conversation: &entity.Conversation{},
		Progress:     entity.NewFormProgress(),
		Device:       device,
		Logger:       logger,
	}
}

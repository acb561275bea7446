package output

import (
	"context"

	"medi-cal-assistant/internal/domain/entity"
)

// AuxiliaryConnector is a connection to one auxiliary service.
type AuxiliaryConnector interface {
	ListTools(ctx context.Context) ([]string, error)
	CallTool(ctx context.Context, name string, args map[string]any) (entity.ToolOutcome, error)
	Close() error
}

type ToolRegistry interface {
	Register(serviceID string, toolNames []string)
	Resolve(name string) (serviceID, operation string, ok bool)
	Invoke(ctx context.Context, name string, args map[string]any) entity.ToolOutcome
	ToolsForService(serviceID string) []string
	Definitions() []entity.ToolDefinition
}

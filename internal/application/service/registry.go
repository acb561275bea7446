package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"medi-cal-assistant/internal/application/port/output"
	"medi-cal-assistant/internal/domain/entity"
)

var _ output.ToolRegistry = (*ToolRegistryImpl)(nil)

var ErrToolNotFound = errors.New("tool not found")

type registryEntry struct {
	ServiceID string
	Operation string
}

// ToolRegistryImpl maps namespaced tool names to auxiliary services. It is
// filled before any session starts and only read afterwards.
type ToolRegistryImpl struct {
	entries    map[string]registryEntry
	connectors map[string]output.AuxiliaryConnector
	logger     output.LoggerPort
}

func NewToolRegistry(logger output.LoggerPort) *ToolRegistryImpl {
	return &ToolRegistryImpl{
		entries:    make(map[string]registryEntry),
		connectors: make(map[string]output.AuxiliaryConnector),
		logger:     logger,
	}
}

// Namespace builds the model-facing name of an auxiliary operation.
func Namespace(serviceID, operation string) string {
	return serviceID + "_" + strings.ReplaceAll(operation, ".", "_")
}

// Connect lists the service's tools and registers them under serviceID.
func (r *ToolRegistryImpl) Connect(ctx context.Context, serviceID string, conn output.AuxiliaryConnector) error {
	names, err := conn.ListTools(ctx)
	if err != nil {
		return fmt.Errorf("list tools of %s: %w", serviceID, err)
	}
	r.connectors[serviceID] = conn
	r.Register(serviceID, names)
	r.logger.Info("Auxiliary service connected", "service", serviceID, "tools", len(names))
	return nil
}

func (r *ToolRegistryImpl) Register(serviceID string, toolNames []string) {
	for _, name := range toolNames {
		r.entries[Namespace(serviceID, name)] = registryEntry{ServiceID: serviceID, Operation: name}
	}
}

func (r *ToolRegistryImpl) Resolve(name string) (string, string, bool) {
	e, ok := r.entries[name]
	return e.ServiceID, e.Operation, ok
}

// Invoke never returns an error: unreachable services and remote failures
// come back as error outcomes so the conversation can continue.
func (r *ToolRegistryImpl) Invoke(ctx context.Context, name string, args map[string]any) entity.ToolOutcome {
	serviceID, operation, ok := r.Resolve(name)
	if !ok {
		return entity.ErrorOutcome("Error calling %s: %v", name, ErrToolNotFound)
	}
	conn, ok := r.connectors[serviceID]
	if !ok {
		return entity.ErrorOutcome("Error calling %s: service %s is not connected", name, serviceID)
	}

	outcome, err := conn.CallTool(ctx, operation, args)
	if err != nil {
		r.logger.Warn("Auxiliary tool failed", "tool", name, "error", err)
		return entity.ErrorOutcome("Error calling %s: %v", name, err)
	}
	return outcome
}

func (r *ToolRegistryImpl) ToolsForService(serviceID string) []string {
	var result []string
	for name, e := range r.entries {
		if e.ServiceID == serviceID {
			result = append(result, name)
		}
	}
	sort.Strings(result)
	return result
}

func (r *ToolRegistryImpl) Definitions() []entity.ToolDefinition {
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)

	result := make([]entity.ToolDefinition, 0, len(names))
	for _, name := range names {
		e := r.entries[name]
		result = append(result, entity.ToolDefinition{
			Name:        name,
			Description: fmt.Sprintf("Tool %s from %s", e.Operation, e.ServiceID),
			Parameters: map[string]any{
				"type":                 "object",
				"additionalProperties": true,
			},
		})
	}
	return result
}

// Close releases every connected service.
func (r *ToolRegistryImpl) Close() error {
	var errs []error
	for id, conn := range r.connectors {
		if err := conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

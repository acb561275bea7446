// Package mcp connects auxiliary services over the Model Context Protocol
// and serves the eligibility rules as one.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"strings"
	"sync"

	"medi-cal-assistant/internal/application/port/output"
	"medi-cal-assistant/internal/domain/entity"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

var _ output.AuxiliaryConnector = (*Connector)(nil)

// SelfAddr spawns the running binary's eligibility subcommand.
const SelfAddr = "self"

// transportBuilder is replaced in tests with in-memory transports.
var transportBuilder = buildTransport

// Connector is one MCP client session. It connects lazily on first use.
type Connector struct {
	client *mcpsdk.Client
	addr   string
	logger output.LoggerPort

	mu         sync.Mutex
	session    *mcpsdk.ClientSession
	connectErr error
	connected  bool
}

func NewConnector(addr, version string, logger output.LoggerPort) *Connector {
	client := mcpsdk.NewClient(&mcpsdk.Implementation{Name: "medi-cal-assistant", Version: version}, nil)
	return &Connector{client: client, addr: addr, logger: logger}
}

func (c *Connector) ensureConnected(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.connected {
		return c.connectErr
	}
	c.connected = true

	transport, err := transportBuilder(ctx, c.addr)
	if err != nil {
		c.connectErr = fmt.Errorf("build transport: %w", err)
		return c.connectErr
	}
	session, err := c.client.Connect(ctx, transport, nil)
	if err != nil {
		c.connectErr = fmt.Errorf("connect %s: %w", c.addr, err)
		return c.connectErr
	}
	c.session = session
	return nil
}

func (c *Connector) ListTools(ctx context.Context) ([]string, error) {
	if err := c.ensureConnected(ctx); err != nil {
		return nil, err
	}
	var names []string
	for tool, err := range c.session.Tools(ctx, nil) {
		if err != nil {
			return nil, fmt.Errorf("list tools: %w", err)
		}
		names = append(names, tool.Name)
	}
	return names, nil
}

func (c *Connector) CallTool(ctx context.Context, name string, args map[string]any) (entity.ToolOutcome, error) {
	if err := c.ensureConnected(ctx); err != nil {
		return entity.ToolOutcome{}, err
	}
	if args == nil {
		args = map[string]any{}
	}
	result, err := c.session.CallTool(ctx, &mcpsdk.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		return entity.ToolOutcome{}, fmt.Errorf("call %s: %w", name, err)
	}
	return toOutcome(result), nil
}

func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil
	}
	err := c.session.Close()
	c.session = nil
	return err
}

// toOutcome joins the text content and decodes structured content into
// Fields.
func toOutcome(result *mcpsdk.CallToolResult) entity.ToolOutcome {
	if result == nil {
		return entity.TextOutcome("")
	}
	var texts []string
	for _, content := range result.Content {
		if t, ok := content.(*mcpsdk.TextContent); ok {
			texts = append(texts, t.Text)
		}
	}
	text := strings.Join(texts, "\n")

	outcome := entity.ToolOutcome{Kind: entity.OutcomeText, Text: text}
	if result.IsError {
		outcome.Kind = entity.OutcomeError
	}
	if result.StructuredContent != nil {
		if raw, err := json.Marshal(result.StructuredContent); err == nil {
			var fields map[string]any
			if json.Unmarshal(raw, &fields) == nil {
				outcome.Fields = fields
			}
		}
	}
	return outcome
}

// ParseServices reads "id=addr;id2=addr2".
func ParseServices(raw string) (map[string]string, error) {
	services := make(map[string]string)
	for _, entry := range strings.Split(raw, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		id, addr, ok := strings.Cut(entry, "=")
		id, addr = strings.TrimSpace(id), strings.TrimSpace(addr)
		if !ok || id == "" || addr == "" {
			return nil, fmt.Errorf("invalid auxiliary service %q (want id=addr)", entry)
		}
		services[id] = addr
	}
	return services, nil
}

const (
	stdioSchemePrefix = "stdio://"
	sseSchemePrefix   = "sse://"
)

func buildTransport(ctx context.Context, addr string) (mcpsdk.Transport, error) {
	addr = strings.TrimSpace(addr)
	lowered := strings.ToLower(addr)
	switch {
	case addr == "":
		return nil, fmt.Errorf("service address is empty")
	case lowered == SelfAddr:
		exe, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("locate executable: %w", err)
		}
		return &mcpsdk.CommandTransport{Command: exec.CommandContext(ctx, exe, "eligibility")}, nil
	case strings.HasPrefix(lowered, stdioSchemePrefix):
		return buildStdioTransport(ctx, addr[len(stdioSchemePrefix):])
	case strings.HasPrefix(lowered, sseSchemePrefix):
		endpoint, err := normalizeHTTPURL("https://" + strings.TrimPrefix(addr[len(sseSchemePrefix):], "//"))
		if err != nil {
			return nil, fmt.Errorf("invalid SSE endpoint: %w", err)
		}
		return &mcpsdk.SSEClientTransport{Endpoint: endpoint}, nil
	case strings.HasPrefix(lowered, "http+stream://"), strings.HasPrefix(lowered, "https+stream://"):
		base, rest, _ := strings.Cut(addr, "+")
		endpoint, err := normalizeHTTPURL(strings.ToLower(base) + rest[len("stream"):])
		if err != nil {
			return nil, fmt.Errorf("invalid streamable endpoint: %w", err)
		}
		return &mcpsdk.StreamableClientTransport{Endpoint: endpoint}, nil
	case strings.HasPrefix(lowered, "http://"), strings.HasPrefix(lowered, "https://"):
		endpoint, err := normalizeHTTPURL(addr)
		if err != nil {
			return nil, fmt.Errorf("invalid SSE endpoint: %w", err)
		}
		return &mcpsdk.SSEClientTransport{Endpoint: endpoint}, nil
	default:
		return buildStdioTransport(ctx, addr)
	}
}

func buildStdioTransport(ctx context.Context, command string) (mcpsdk.Transport, error) {
	parts := strings.Fields(command)
	if len(parts) == 0 {
		return nil, fmt.Errorf("stdio command is empty")
	}
	// #nosec G204 -- commands come from AUX_SERVICES, set by the operator
	return &mcpsdk.CommandTransport{Command: exec.CommandContext(ctx, parts[0], parts[1:]...)}, nil
}

func normalizeHTTPURL(raw string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", err
	}
	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("missing host")
	}
	parsed.Scheme = scheme
	return parsed.String(), nil
}

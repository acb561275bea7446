package mcp

import (
	"context"
	"os/exec"
	"testing"

	"medi-cal-assistant/internal/application/service"
	"medi-cal-assistant/internal/domain/entity"
	"medi-cal-assistant/internal/testutil"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// connectInMemory serves the eligibility server over in-memory transports
// and points transportBuilder at them.
func connectInMemory(t *testing.T) *Connector {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())

	serverTransport, clientTransport := mcpsdk.NewInMemoryTransports()
	session, err := NewEligibilityServer("test").Connect(ctx, serverTransport, nil)
	require.NoError(t, err)

	original := transportBuilder
	transportBuilder = func(context.Context, string) (mcpsdk.Transport, error) {
		return clientTransport, nil
	}

	conn := NewConnector("inmemory", "test", testutil.NopLogger{})
	t.Cleanup(func() {
		_ = conn.Close()
		_ = session.Close()
		cancel()
		transportBuilder = original
	})
	return conn
}

func TestConnector_EligibilityRoundTrip(t *testing.T) {
	conn := connectInMemory(t)
	ctx := context.Background()

	tools, err := conn.ListTools(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{EligibilityTool}, tools)

	out, err := conn.CallTool(ctx, EligibilityTool, map[string]any{"age": 70, "annual_income": 90000, "household_size": 1})
	require.NoError(t, err)
	assert.Equal(t, entity.OutcomeText, out.Kind)
	assert.Equal(t, "ELIGIBLE: categorical match -> Over 65 (age=70)", out.Text)
	assert.True(t, out.Bool("eligible"))
	assert.Equal(t, "ELIGIBLE", out.Fields["status"])

	out, err = conn.CallTool(ctx, EligibilityTool, map[string]any{"age": 30, "annual_income": 50000, "household_size": 4})
	require.NoError(t, err)
	assert.Equal(t, "NOT ELIGIBLE: no categorical match and income $50000.00 > limit $43056.00 for household_size=4", out.Text)
	assert.False(t, out.Bool("eligible"))
}

func TestConnector_QueryArgument(t *testing.T) {
	conn := connectInMemory(t)

	out, err := conn.CallTool(context.Background(), EligibilityTool, map[string]any{"query": "I'm 70, household of 1"})
	require.NoError(t, err)
	assert.True(t, out.Bool("eligible"))

	out, err = conn.CallTool(context.Background(), EligibilityTool, nil)
	require.NoError(t, err)
	assert.Equal(t, "MISSING", out.Fields["status"])
}

func TestConnector_ThroughRegistry(t *testing.T) {
	conn := connectInMemory(t)
	reg := service.NewToolRegistry(testutil.NopLogger{})
	require.NoError(t, reg.Connect(context.Background(), "eligibility", conn))

	name := "eligibility_" + EligibilityTool
	assert.Equal(t, []string{name}, reg.ToolsForService("eligibility"))

	out := reg.Invoke(context.Background(), name, map[string]any{"age": "abc", "household_size": 2})
	assert.Equal(t, "Invalid input: age must be an integer", out.Text)
}

func TestConnector_ConnectFailureIsCached(t *testing.T) {
	original := transportBuilder
	defer func() { transportBuilder = original }()

	calls := 0
	transportBuilder = func(context.Context, string) (mcpsdk.Transport, error) {
		calls++
		return nil, assert.AnError
	}

	conn := NewConnector("bad", "test", testutil.NopLogger{})
	_, err := conn.ListTools(context.Background())
	require.ErrorIs(t, err, assert.AnError)
	_, err = conn.CallTool(context.Background(), EligibilityTool, nil)
	require.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 1, calls)
	assert.NoError(t, conn.Close())
}

func TestToOutcome(t *testing.T) {
	out := toOutcome(&mcpsdk.CallToolResult{
		IsError: true,
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: "a"}, &mcpsdk.TextContent{Text: "b"}},
	})
	assert.Equal(t, entity.OutcomeError, out.Kind)
	assert.Equal(t, "a\nb", out.Text)
	assert.Nil(t, out.Fields)

	assert.Equal(t, entity.TextOutcome(""), toOutcome(nil))
}

func TestParseServices(t *testing.T) {
	services, err := ParseServices("eligibility=self; weather = stdio://weather-mcp --units us ;")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"eligibility": "self",
		"weather":     "stdio://weather-mcp --units us",
	}, services)

	_, err = ParseServices("broken")
	assert.Error(t, err)
}

func TestBuildTransport(t *testing.T) {
	ctx := context.Background()

	tr, err := buildTransport(ctx, "stdio://weather-mcp --units us")
	require.NoError(t, err)
	cmd := tr.(*mcpsdk.CommandTransport).Command
	assert.Equal(t, []string{"weather-mcp", "--units", "us"}, cmd.Args)

	tr, err = buildTransport(ctx, "self")
	require.NoError(t, err)
	self := tr.(*mcpsdk.CommandTransport).Command
	assert.Equal(t, "eligibility", self.Args[len(self.Args)-1])
	assert.IsType(t, &exec.Cmd{}, self)

	tr, err = buildTransport(ctx, "sse://mcp.example/tools")
	require.NoError(t, err)
	assert.Equal(t, "https://mcp.example/tools", tr.(*mcpsdk.SSEClientTransport).Endpoint)

	tr, err = buildTransport(ctx, "HTTP+STREAM://api.example/mcp")
	require.NoError(t, err)
	assert.Equal(t, "http://api.example/mcp", tr.(*mcpsdk.StreamableClientTransport).Endpoint)

	for _, bad := range []string{"", "stdio://", "http://", "sse://"} {
		_, err := buildTransport(ctx, bad)
		assert.Error(t, err, "addr %q", bad)
	}
}

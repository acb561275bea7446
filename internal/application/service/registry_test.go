package service

import (
	"context"
	"errors"
	"testing"

	"medi-cal-assistant/internal/domain/entity"
	"medi-cal-assistant/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNamespace(t *testing.T) {
	assert.Equal(t, "eligibility_check_medicaid_eligibility", Namespace("eligibility", "check_medicaid_eligibility"))
	assert.Equal(t, "forms_pdf_fill", Namespace("forms", "pdf.fill"))
}

func TestRegistry_ConnectResolveInvoke(t *testing.T) {
	conn := &testutil.FakeConnector{
		Tools: []string{"check_medicaid_eligibility"},
		Outcomes: map[string]entity.ToolOutcome{
			"check_medicaid_eligibility": entity.TextOutcome("ELIGIBLE: categorical match -> Over 65 (age=70)"),
		},
	}
	r := NewToolRegistry(testutil.NopLogger{})
	require.NoError(t, r.Connect(context.Background(), "eligibility", conn))

	service, op, ok := r.Resolve("eligibility_check_medicaid_eligibility")
	require.True(t, ok)
	assert.Equal(t, "eligibility", service)
	assert.Equal(t, "check_medicaid_eligibility", op)

	out := r.Invoke(context.Background(), "eligibility_check_medicaid_eligibility", map[string]any{"age": 70})
	assert.Equal(t, entity.OutcomeText, out.Kind)
	assert.Contains(t, out.Text, "Over 65")
	assert.Equal(t, []map[string]any{{"age": 70}}, conn.Calls)

	assert.Equal(t, []string{"eligibility_check_medicaid_eligibility"}, r.ToolsForService("eligibility"))
	assert.Empty(t, r.ToolsForService("weather"))
}

func TestRegistry_InvokeFailuresBecomeOutcomes(t *testing.T) {
	conn := &testutil.FakeConnector{Tools: []string{"ping"}, Err: errors.New("broken pipe")}
	r := NewToolRegistry(testutil.NopLogger{})
	require.NoError(t, r.Connect(context.Background(), "svc", conn))

	out := r.Invoke(context.Background(), "svc_ping", nil)
	assert.True(t, out.IsError())
	assert.Contains(t, out.Text, "broken pipe")

	out = r.Invoke(context.Background(), "svc_missing", nil)
	assert.True(t, out.IsError())
	assert.Contains(t, out.Text, "tool not found")

	r.Register("orphan", []string{"op"})
	out = r.Invoke(context.Background(), "orphan_op", nil)
	assert.True(t, out.IsError())
	assert.Contains(t, out.Text, "not connected")
}

func TestRegistry_Definitions(t *testing.T) {
	r := NewToolRegistry(testutil.NopLogger{})
	r.Register("b", []string{"two"})
	r.Register("a", []string{"one.sub"})

	defs := r.Definitions()
	require.Len(t, defs, 2)
	assert.Equal(t, "a_one_sub", defs[0].Name)
	assert.Equal(t, "Tool one.sub from a", defs[0].Description)
	assert.Equal(t, true, defs[0].Parameters["additionalProperties"])
	assert.Equal(t, "b_two", defs[1].Name)
}

func TestRegistry_Close(t *testing.T) {
	conn := &testutil.FakeConnector{Tools: []string{"x"}}
	r := NewToolRegistry(testutil.NopLogger{})
	require.NoError(t, r.Connect(context.Background(), "svc", conn))

	require.NoError(t, r.Close())
	assert.True(t, conn.Closed)
}

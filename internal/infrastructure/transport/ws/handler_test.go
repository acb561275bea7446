package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"medi-cal-assistant/internal/application/port/input"
	"medi-cal-assistant/internal/application/port/output"
	"medi-cal-assistant/internal/domain/entity"
	"medi-cal-assistant/internal/testutil"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingProcessor struct {
	mu       sync.Mutex
	requests []input.TurnRequest
	sessions map[string]bool
	reply    func(session *input.Session, req input.TurnRequest) (*input.TurnResult, error)
}

func (p *recordingProcessor) ProcessTurn(ctx context.Context, session *input.Session, req input.TurnRequest) (*input.TurnResult, error) {
	p.mu.Lock()
	p.requests = append(p.requests, req)
	if p.sessions == nil {
		p.sessions = make(map[string]bool)
	}
	p.sessions[session.ID] = true
	p.mu.Unlock()

	session.Conversation.Append(entity.UserText(req.Text))
	if p.reply != nil {
		return p.reply(session, req)
	}
	session.Conversation.Append(entity.AssistantText("echo: " + req.Text))
	return &input.TurnResult{Response: "echo: " + req.Text}, nil
}

func (p *recordingProcessor) Requests() []input.TurnRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]input.TurnRequest(nil), p.requests...)
}

func newTestServer(t *testing.T, proc input.TurnProcessor, devices output.DeviceFactory) *httptest.Server {
	t.Helper()
	handler := NewHandler(proc, devices, testutil.NopLogger{})
	router := NewRouter(RouterConfig{ServiceName: "test", MedicalHomeURL: "https://example.org/apply"}, handler)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func fakeDevices(dev *testutil.FakeDevice) output.DeviceFactory {
	return func(ctx context.Context) (output.DevicePort, error) {
		return dev, nil
	}
}

func roundTrip(t *testing.T, conn *websocket.Conn, frame string) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(frame)))
	var reply map[string]any
	require.NoError(t, conn.ReadJSON(&reply))
	return reply
}

func TestHandler_MessageActions(t *testing.T) {
	proc := &recordingProcessor{}
	srv := newTestServer(t, proc, fakeDevices(testutil.NewFakeDevice()))
	conn := dial(t, srv)

	reply := roundTrip(t, conn, `{"action":"message","text":"hello","lang":"es","verbosity":"concise"}`)
	assert.Equal(t, "echo: hello", reply["response"])

	reply = roundTrip(t, conn, `{"action":"plan_answers","answers":{"q1":"yes"}}`)
	assert.Equal(t, `echo: Plan answers: {"q1":"yes"}`, reply["response"])

	reply = roundTrip(t, conn, `{"action":"screenshot","name":"id card","url":"https://x/y.png"}`)
	assert.Equal(t, "echo: User provided screenshot 'id card': https://x/y.png", reply["response"])

	reply = roundTrip(t, conn, `94110`)
	assert.Equal(t, "echo: 94110", reply["response"])

	reqs := proc.Requests()
	require.Len(t, reqs, 4)
	assert.Equal(t, "es", reqs[0].Lang)
	assert.Equal(t, input.VerbosityConcise, reqs[0].Verbosity)
	assert.Equal(t, input.VerbosityNormal, reqs[1].Verbosity)
}

func TestHandler_OpenURLAction(t *testing.T) {
	proc := &recordingProcessor{reply: func(s *input.Session, req input.TurnRequest) (*input.TurnResult, error) {
		s.Conversation.Append(entity.AssistantText("You may be eligible."))
		return &input.TurnResult{
			Action:  "open_url",
			URL:     "https://example.org/apply",
			Message: "You may be eligible.",
			Actions: []entity.ScriptedAction{{Type: "navigate", Value: "https://example.org/apply"}},
		}, nil
	}}
	srv := newTestServer(t, proc, fakeDevices(testutil.NewFakeDevice()))
	conn := dial(t, srv)

	reply := roundTrip(t, conn, `am I eligible? I'm 70`)

	assert.Equal(t, "open_url", reply["action"])
	assert.Equal(t, "https://example.org/apply", reply["url"])
	assert.Len(t, reply["actions"], 1)
	messages := reply["messages"].([]any)
	require.Len(t, messages, 2)
	assert.Equal(t, "user", messages[0].(map[string]any)["role"])
}

func TestHandler_ProcessorError(t *testing.T) {
	proc := &recordingProcessor{reply: func(*input.Session, input.TurnRequest) (*input.TurnResult, error) {
		return nil, errors.New("model unavailable")
	}}
	srv := newTestServer(t, proc, fakeDevices(testutil.NewFakeDevice()))
	conn := dial(t, srv)

	reply := roundTrip(t, conn, `{"text":"hi"}`)

	assert.Equal(t, "error", reply["action"])
	assert.Equal(t, "Error processing query: model unavailable", reply["message"])
}

func TestHandler_SessionsAreIsolated(t *testing.T) {
	proc := &recordingProcessor{}
	var opened int
	var mu sync.Mutex
	devices := func(ctx context.Context) (output.DevicePort, error) {
		mu.Lock()
		defer mu.Unlock()
		opened++
		return testutil.NewFakeDevice(), nil
	}
	srv := newTestServer(t, proc, devices)

	roundTrip(t, dial(t, srv), `one`)
	roundTrip(t, dial(t, srv), `two`)

	mu.Lock()
	assert.Equal(t, 2, opened)
	mu.Unlock()
	proc.mu.Lock()
	assert.Len(t, proc.sessions, 2)
	proc.mu.Unlock()
}

func TestHandler_ClosesDeviceOnDisconnect(t *testing.T) {
	dev := testutil.NewFakeDevice()
	srv := newTestServer(t, &recordingProcessor{}, fakeDevices(dev))
	conn := dial(t, srv)
	roundTrip(t, conn, `hi`)

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))

	assert.Eventually(t, dev.IsClosed, 2*time.Second, 10*time.Millisecond)
}

func TestHandler_DeviceFactoryError(t *testing.T) {
	devices := func(ctx context.Context) (output.DevicePort, error) {
		return nil, errors.New("browser not available")
	}
	srv := newTestServer(t, &recordingProcessor{}, devices)
	conn := dial(t, srv)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var reply map[string]any
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, "error", reply["action"])
	assert.Contains(t, reply["message"], "browser not available")
}

func TestRouter_Endpoints(t *testing.T) {
	srv := newTestServer(t, &recordingProcessor{}, fakeDevices(testutil.NewFakeDevice()))

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/api/config")
	require.NoError(t, err)
	defer resp.Body.Close()
	var cfg map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&cfg))
	assert.Equal(t, "https://example.org/apply", cfg["medical_home_url"])
}

func TestDecodeRequest(t *testing.T) {
	tests := []struct {
		name  string
		frame string
		want  string
	}{
		{"plain text", "my zip is 94110", "my zip is 94110"},
		{"default action", `{"text":"hi"}`, "hi"},
		{"plan answers without answers", `{"action":"plan_answers"}`, "Plan answers: {}"},
		{"json string frame", `"quoted"`, `"quoted"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, decodeRequest([]byte(tt.frame)).Text)
		})
	}
}

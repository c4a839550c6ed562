package transport_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/logiscapedev/mcp/jsonrpc"
	"github.com/logiscapedev/mcp/server"
	"github.com/logiscapedev/mcp/transport"
)

func echoServer(t *testing.T) *server.Server {
	t.Helper()
	srv := server.New(server.Info{Name: "ws-test", Version: "1.0.0"})
	tool, err := server.NewTool("echo").
		Handler(func(ctx context.Context, input struct {
			Text string `json:"text"`
		}) (string, error) {
			return input.Text, nil
		}).
		Build()
	if err != nil {
		t.Fatalf("build tool: %v", err)
	}
	if err := srv.AddTool(tool); err != nil {
		t.Fatalf("add tool: %v", err)
	}
	return srv
}

func TestWebSocket(t *testing.T) {
	t.Run("addr", func(t *testing.T) {
		ws := transport.NewWebSocket(":18766")
		if got := ws.Addr(); got != ":18766" {
			t.Errorf("addr = %q", got)
		}
	})

	t.Run("shuts down on context cancel", func(t *testing.T) {
		ws := transport.NewWebSocket(":18767")

		ctx, cancel := context.WithCancel(context.Background())
		errChan := make(chan error, 1)
		go func() {
			errChan <- ws.Serve(ctx, echoServer(t))
		}()

		time.Sleep(50 * time.Millisecond)
		cancel()

		select {
		case err := <-errChan:
			if err != nil {
				t.Errorf("serve returned %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("Serve did not return after cancellation")
		}
	})
}

func TestWebSocket_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	t.Run("full session over websocket", func(t *testing.T) {
		ws := transport.NewWebSocket(":18765")

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		errChan := make(chan error, 1)
		go func() {
			errChan <- ws.Serve(ctx, echoServer(t))
		}()

		// Wait for server to start
		time.Sleep(100 * time.Millisecond)

		conn, _, err := websocket.DefaultDialer.Dial("ws://localhost:18765/", nil)
		if err != nil {
			t.Fatalf("failed to connect: %v", err)
		}
		defer conn.Close()

		initReq := jsonrpc.Request{
			JSONRPC: "2.0",
			ID:      json.RawMessage(`1`),
			Method:  "initialize",
		}
		if err := conn.WriteJSON(initReq); err != nil {
			t.Fatalf("send initialize: %v", err)
		}

		var initResp jsonrpc.Response
		if err := conn.ReadJSON(&initResp); err != nil {
			t.Fatalf("read initialize: %v", err)
		}
		if initResp.Error != nil {
			t.Fatalf("initialize error: %v", initResp.Error)
		}

		callReq := jsonrpc.Request{
			JSONRPC: "2.0",
			ID:      json.RawMessage(`2`),
			Method:  "tools/call",
			Params:  json.RawMessage(`{"name":"echo","arguments":{"text":"hello"}}`),
		}
		if err := conn.WriteJSON(callReq); err != nil {
			t.Fatalf("send call: %v", err)
		}

		var callResp jsonrpc.Response
		if err := conn.ReadJSON(&callResp); err != nil {
			t.Fatalf("read call: %v", err)
		}
		if callResp.Error != nil {
			t.Fatalf("call error: %v", callResp.Error)
		}

		data, _ := json.Marshal(callResp.Result)
		var result struct {
			Content string `json:"content"`
		}
		if err := json.Unmarshal(data, &result); err != nil {
			t.Fatalf("decode result: %v", err)
		}
		if result.Content != "hello" {
			t.Errorf("content = %q, want hello", result.Content)
		}
	})

	t.Run("malformed frame reports parse error and keeps the connection", func(t *testing.T) {
		ws := transport.NewWebSocket(":18768")

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		errChan := make(chan error, 1)
		go func() {
			errChan <- ws.Serve(ctx, echoServer(t))
		}()

		time.Sleep(100 * time.Millisecond)

		conn, _, err := websocket.DefaultDialer.Dial("ws://localhost:18768/", nil)
		if err != nil {
			t.Fatalf("failed to connect: %v", err)
		}
		defer conn.Close()

		if err := conn.WriteMessage(websocket.TextMessage, []byte(`{not json`)); err != nil {
			t.Fatalf("send: %v", err)
		}

		var errResp jsonrpc.Response
		if err := conn.ReadJSON(&errResp); err != nil {
			t.Fatalf("read: %v", err)
		}
		if errResp.Error == nil || errResp.Error.Code != jsonrpc.CodeParseError {
			t.Fatalf("expected parse error, got %+v", errResp.Error)
		}

		// The connection survives: a real request still works.
		pingReq := jsonrpc.Request{
			JSONRPC: "2.0",
			ID:      json.RawMessage(`1`),
			Method:  "ping",
		}
		if err := conn.WriteJSON(pingReq); err != nil {
			t.Fatalf("send ping: %v", err)
		}
		var pingResp jsonrpc.Response
		if err := conn.ReadJSON(&pingResp); err != nil {
			t.Fatalf("read ping: %v", err)
		}
		if pingResp.Error != nil {
			t.Errorf("ping error: %v", pingResp.Error)
		}
	})
}

package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/logiscapedev/mcp/jsonrpc"
	"github.com/logiscapedev/mcp/server"
)

// WebSocket serves MCP sessions over WebSocket connections. Each
// connection gets its own session; one JSON-RPC message travels per
// text frame, so the WebSocket framing replaces the newline delimiter.
type WebSocket struct {
	addr     string
	upgrader websocket.Upgrader
	httpSrv  *http.Server

	readTimeout  time.Duration
	writeTimeout time.Duration
	sessionOpts  []server.SessionOption

	mu    sync.Mutex
	conns map[*wsConn]struct{}
}

// wsConn is a single WebSocket connection with serialized writes.
type wsConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// WebSocketOption configures a WebSocket transport.
type WebSocketOption func(*WebSocket)

// WithReadTimeout sets the read deadline applied per message.
func WithReadTimeout(d time.Duration) WebSocketOption {
	return func(ws *WebSocket) {
		ws.readTimeout = d
	}
}

// WithWriteTimeout sets the write deadline applied per message.
func WithWriteTimeout(d time.Duration) WebSocketOption {
	return func(ws *WebSocket) {
		ws.writeTimeout = d
	}
}

// WithCheckOrigin sets the origin check used during upgrades.
func WithCheckOrigin(fn func(r *http.Request) bool) WebSocketOption {
	return func(ws *WebSocket) {
		ws.upgrader.CheckOrigin = fn
	}
}

// WithSessionOptions sets options applied to every session the
// transport creates, such as server.WithMiddleware.
func WithSessionOptions(opts ...server.SessionOption) WebSocketOption {
	return func(ws *WebSocket) {
		ws.sessionOpts = append(ws.sessionOpts, opts...)
	}
}

// NewWebSocket creates a WebSocket transport listening on addr.
func NewWebSocket(addr string, opts ...WebSocketOption) *WebSocket {
	ws := &WebSocket{
		addr: addr,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		readTimeout:  60 * time.Second,
		writeTimeout: 10 * time.Second,
		conns:        make(map[*wsConn]struct{}),
	}

	for _, opt := range opts {
		opt(ws)
	}

	return ws
}

// Addr returns the transport address.
func (ws *WebSocket) Addr() string {
	return ws.addr
}

// Serve accepts connections and serves one session per connection until
// ctx is canceled or the listener fails.
func (ws *WebSocket) Serve(ctx context.Context, srv *server.Server) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		ws.handleConnection(ctx, w, r, srv)
	})

	ws.httpSrv = &http.Server{
		Addr:         ws.addr,
		Handler:      mux,
		ReadTimeout:  ws.readTimeout,
		WriteTimeout: ws.writeTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		if err := ws.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		ws.closeAll()
		return ws.httpSrv.Shutdown(shutdownCtx)
	case err := <-errChan:
		return err
	}
}

func (ws *WebSocket) handleConnection(ctx context.Context, w http.ResponseWriter, r *http.Request, srv *server.Server) {
	conn, err := ws.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	c := &wsConn{conn: conn}

	ws.mu.Lock()
	ws.conns[c] = struct{}{}
	ws.mu.Unlock()

	defer func() {
		ws.mu.Lock()
		delete(ws.conns, c)
		ws.mu.Unlock()
		_ = conn.Close()
	}()

	sess := server.NewSession(srv, ws.sessionOpts...)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if ws.readTimeout > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(ws.readTimeout))
		}

		_, message, err := conn.ReadMessage()
		if err != nil {
			// Close errors mean the client disconnected.
			return
		}

		var req jsonrpc.Request
		if err := json.Unmarshal(message, &req); err != nil {
			_ = c.writeJSON(jsonrpc.NewErrorResponse(nil, jsonrpc.NewParseError(err.Error())))
			continue
		}

		if resp := sess.Handle(ctx, &req); resp != nil {
			_ = c.writeJSON(resp)
		}
	}
}

func (ws *WebSocket) closeAll() {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	for c := range ws.conns {
		c.close()
	}
}

func (c *wsConn) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

func (c *wsConn) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_ = c.conn.Close()
}

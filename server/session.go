package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync/atomic"

	"github.com/logiscapedev/mcp/framing"
	"github.com/logiscapedev/mcp/jsonrpc"
)

// State identifies a session's position in its lifecycle.
type State int32

const (
	// StateUninitialized is the state before the initialize handshake.
	StateUninitialized State = iota
	// StateInitialized is the steady serving state.
	StateInitialized
	// StateClosed is the terminal state after the stream ended.
	StateClosed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitialized:
		return "initialized"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithMiddleware wraps the session's dispatcher with middleware,
// executed in the order given.
func WithMiddleware(mw ...Middleware) SessionOption {
	return func(s *Session) {
		s.middleware = append(s.middleware, mw...)
	}
}

// Session serves one client connection. It owns the state machine and
// routes each incoming message through the middleware chain to the
// dispatcher. Creating a session freezes the server's registries, so
// capabilities cannot change once serving has begun.
type Session struct {
	srv        *Server
	state      atomic.Int32
	middleware []Middleware
	handler    HandlerFunc
}

// NewSession creates a session for srv and freezes its registries.
func NewSession(srv *Server, opts ...SessionOption) *Session {
	srv.freeze()

	s := &Session{srv: srv}
	for _, opt := range opts {
		opt(s)
	}

	h := HandlerFunc(s.dispatch)
	if len(s.middleware) > 0 {
		h = Chain(s.middleware...)(h)
	}
	s.handler = h
	return s
}

// State returns the session's current lifecycle state.
func (s *Session) State() State {
	return State(s.state.Load())
}

// Handle runs one decoded request through the middleware chain and the
// dispatcher. It returns nil for notifications, even when the method
// fails: errors for notifications are dropped, never sent. For requests
// the response always carries the request's id byte-for-byte.
func (s *Session) Handle(ctx context.Context, req *jsonrpc.Request) *jsonrpc.Response {
	resp, err := s.handler(ctx, req)

	if req.IsNotification() {
		return nil
	}
	if err != nil {
		return jsonrpc.NewErrorResponse(req.ID, asRPCError(err))
	}
	if resp == nil {
		resp = jsonrpc.NewResponse(req.ID, struct{}{})
	}
	return resp
}

// Serve runs the read-dispatch-write loop over the stream until the
// stream ends, the context is canceled, or a framing error corrupts the
// connection. The stream is closed and the session transitions to
// StateClosed on the way out. A clean EOF returns nil; framing errors
// are returned as *framing.FramingError.
func (s *Session) Serve(ctx context.Context, stream io.ReadWriteCloser) error {
	defer func() {
		s.state.Store(int32(StateClosed))
		_ = stream.Close()
	}()

	codec := framing.New(stream, stream)

	type readResult struct {
		msg json.RawMessage
		err error
	}
	// Buffered so the reader's final send completes even when the
	// receive loop has already returned.
	reads := make(chan readResult, 1)

	go func() {
		defer close(reads)
		for {
			msg, err := codec.ReadMessage()
			select {
			case reads <- readResult{msg: msg, err: err}:
			case <-ctx.Done():
				return
			}
			if err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case r, ok := <-reads:
			if !ok {
				return nil
			}
			if r.err != nil {
				if errors.Is(r.err, io.EOF) {
					return nil
				}
				return r.err
			}
			if err := s.serveMessage(ctx, codec, r.msg); err != nil {
				return err
			}
		}
	}
}

// serveMessage decodes and dispatches one framed message and writes the
// response, if any.
func (s *Session) serveMessage(ctx context.Context, codec *framing.Codec, raw json.RawMessage) error {
	var req jsonrpc.Request
	if err := json.Unmarshal(raw, &req); err != nil {
		// Valid JSON that is not a request object. Recoverable: report
		// and keep reading.
		resp := jsonrpc.NewErrorResponse(nil, jsonrpc.NewInvalidRequest(err.Error()))
		return codec.WriteMessage(resp)
	}

	resp := s.Handle(ctx, &req)
	if resp == nil {
		return nil
	}
	return codec.WriteMessage(resp)
}

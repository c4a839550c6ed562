package jsonrpc

import (
	"bytes"
	"encoding/json"
)

// Version is the JSON-RPC protocol version.
const Version = "2.0"

var literalNull = []byte("null")

// Request represents a JSON-RPC 2.0 request or notification.
//
// The ID is kept as raw bytes so that responses echo it exactly as the
// client sent it (string, number, or null) without re-encoding.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// IsNotification reports whether the request expects no response.
// Both an absent id and a literal null id mark a notification.
func (r *Request) IsNotification() bool {
	return len(r.ID) == 0 || bytes.Equal(r.ID, literalNull)
}

// Response represents a JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// NewResponse creates a successful response carrying the request's id.
func NewResponse(id json.RawMessage, result any) *Response {
	return &Response{
		JSONRPC: Version,
		ID:      id,
		Result:  result,
	}
}

// NewErrorResponse creates an error response carrying the request's id.
func NewErrorResponse(id json.RawMessage, err *Error) *Response {
	return &Response{
		JSONRPC: Version,
		ID:      id,
		Error:   err,
	}
}

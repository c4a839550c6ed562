// Package transport provides byte-stream transports for the MCP server
// engine.
package transport

import "io"

// Stream is a duplex byte stream carrying newline-delimited JSON-RPC
// messages. A session owns its stream for the lifetime of the
// connection and closes it when the loop ends.
type Stream interface {
	io.Reader
	io.Writer
	io.Closer

	// Addr returns a description of the stream's endpoint.
	Addr() string
}

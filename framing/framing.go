// Package framing splits a raw byte stream into discrete JSON-RPC
// messages and serializes outgoing messages back to bytes.
//
// Messages are newline-delimited: one JSON object per line, no embedded
// unescaped newlines. This matches what MCP clients speaking the stdio
// transport expect.
package framing

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
)

// FramingError reports a corrupt or truncated message stream. It is
// fatal to the connection: there is no way to resynchronize a newline
// stream once the sender stops producing JSON lines.
type FramingError struct {
	Err error
}

// Error implements the error interface.
func (e *FramingError) Error() string {
	return fmt.Sprintf("framing: %v", e.Err)
}

// Unwrap returns the underlying cause.
func (e *FramingError) Unwrap() error {
	return e.Err
}

// Codec reads and writes newline-delimited JSON messages over a byte
// stream, buffering partial reads across chunk boundaries.
type Codec struct {
	r *bufio.Reader

	mu sync.Mutex
	w  io.Writer
}

// New creates a codec over the given reader and writer.
func New(r io.Reader, w io.Writer) *Codec {
	return &Codec{
		r: bufio.NewReader(r),
		w: w,
	}
}

// ReadMessage returns the next complete, syntactically valid JSON
// message from the stream. Blank lines are skipped. It returns io.EOF
// when the stream ends cleanly between messages, and a *FramingError
// wrapping io.ErrUnexpectedEOF when the stream ends mid-message.
func (c *Codec) ReadMessage() (json.RawMessage, error) {
	for {
		line, err := c.r.ReadBytes('\n')
		if err != nil {
			if !errors.Is(err, io.EOF) {
				return nil, &FramingError{Err: err}
			}
			if len(bytes.TrimSpace(line)) == 0 {
				return nil, io.EOF
			}
			// Bytes arrived but the delimiter never did.
			return nil, &FramingError{Err: io.ErrUnexpectedEOF}
		}

		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		if !json.Valid(line) {
			return nil, &FramingError{Err: fmt.Errorf("message is not valid JSON: %q", truncateForError(line))}
		}
		return json.RawMessage(line), nil
	}
}

// WriteMessage marshals v and writes it as exactly one delimited unit.
// The write is atomic with respect to other WriteMessage calls, so
// concurrent responses never interleave on the stream.
func (c *Codec) WriteMessage(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("framing: marshal message: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.w.Write(data); err != nil {
		return &FramingError{Err: err}
	}
	if _, err := c.w.Write([]byte("\n")); err != nil {
		return &FramingError{Err: err}
	}
	return nil
}

func truncateForError(b []byte) []byte {
	const max = 64
	if len(b) <= max {
		return b
	}
	return b[:max]
}

package transport

import (
	"io"
	"os"
)

// Stdio is a Stream over the process's stdin and stdout.
type Stdio struct {
	in  io.Reader
	out io.Writer
}

// StdioOption configures a Stdio stream.
type StdioOption func(*Stdio)

// WithStdin sets a custom reader in place of os.Stdin.
func WithStdin(r io.Reader) StdioOption {
	return func(s *Stdio) {
		s.in = r
	}
}

// WithStdout sets a custom writer in place of os.Stdout.
func WithStdout(w io.Writer) StdioOption {
	return func(s *Stdio) {
		s.out = w
	}
}

// NewStdio creates a stdio stream.
func NewStdio(opts ...StdioOption) *Stdio {
	s := &Stdio{
		in:  os.Stdin,
		out: os.Stdout,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Read reads from the input side of the stream.
func (s *Stdio) Read(p []byte) (int, error) {
	return s.in.Read(p)
}

// Write writes to the output side of the stream.
func (s *Stdio) Write(p []byte) (int, error) {
	return s.out.Write(p)
}

// Close is a no-op: stdin and stdout belong to the process.
func (s *Stdio) Close() error {
	return nil
}

// Addr returns the stream address.
func (s *Stdio) Addr() string {
	return "stdio"
}

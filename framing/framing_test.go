package framing

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
)

// chunkReader returns at most one byte per Read call, forcing the codec
// to reassemble messages across chunk boundaries.
type chunkReader struct {
	data []byte
	pos  int
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	p[0] = r.data[r.pos]
	r.pos++
	return 1, nil
}

func TestReadMessage(t *testing.T) {
	t.Run("reads one message per line", func(t *testing.T) {
		in := strings.NewReader(`{"id":1}` + "\n" + `{"id":2}` + "\n")
		c := New(in, io.Discard)

		first, err := c.ReadMessage()
		if err != nil {
			t.Fatalf("first read: %v", err)
		}
		if string(first) != `{"id":1}` {
			t.Errorf("first = %s", first)
		}

		second, err := c.ReadMessage()
		if err != nil {
			t.Fatalf("second read: %v", err)
		}
		if string(second) != `{"id":2}` {
			t.Errorf("second = %s", second)
		}

		if _, err := c.ReadMessage(); err != io.EOF {
			t.Errorf("expected io.EOF at stream end, got %v", err)
		}
	})

	t.Run("buffers partial reads across chunk boundaries", func(t *testing.T) {
		c := New(&chunkReader{data: []byte(`{"method":"ping"}` + "\n")}, io.Discard)

		msg, err := c.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if string(msg) != `{"method":"ping"}` {
			t.Errorf("msg = %s", msg)
		}
	})

	t.Run("skips blank lines", func(t *testing.T) {
		in := strings.NewReader("\n\n  \n" + `{"id":1}` + "\n")
		c := New(in, io.Discard)

		msg, err := c.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if string(msg) != `{"id":1}` {
			t.Errorf("msg = %s", msg)
		}
	})

	t.Run("invalid JSON is a framing error", func(t *testing.T) {
		in := strings.NewReader("not json at all\n")
		c := New(in, io.Discard)

		_, err := c.ReadMessage()
		var fe *FramingError
		if !errors.As(err, &fe) {
			t.Fatalf("expected *FramingError, got %T: %v", err, err)
		}
	})

	t.Run("truncated stream is unexpected EOF", func(t *testing.T) {
		in := strings.NewReader(`{"id":1,"meth`)
		c := New(in, io.Discard)

		_, err := c.ReadMessage()
		var fe *FramingError
		if !errors.As(err, &fe) {
			t.Fatalf("expected *FramingError, got %T: %v", err, err)
		}
		if !errors.Is(err, io.ErrUnexpectedEOF) {
			t.Errorf("expected io.ErrUnexpectedEOF cause, got %v", fe.Err)
		}
	})

	t.Run("clean EOF after trailing newline", func(t *testing.T) {
		in := strings.NewReader(`{"id":1}` + "\n")
		c := New(in, io.Discard)

		if _, err := c.ReadMessage(); err != nil {
			t.Fatalf("read: %v", err)
		}
		if _, err := c.ReadMessage(); err != io.EOF {
			t.Errorf("expected io.EOF, got %v", err)
		}
	})
}

func TestWriteMessage(t *testing.T) {
	t.Run("one delimited unit per call", func(t *testing.T) {
		var out bytes.Buffer
		c := New(strings.NewReader(""), &out)

		if err := c.WriteMessage(map[string]int{"id": 1}); err != nil {
			t.Fatalf("write: %v", err)
		}
		if err := c.WriteMessage(map[string]int{"id": 2}); err != nil {
			t.Fatalf("write: %v", err)
		}

		lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
		if len(lines) != 2 {
			t.Fatalf("expected 2 lines, got %d: %q", len(lines), out.String())
		}
		if lines[0] != `{"id":1}` || lines[1] != `{"id":2}` {
			t.Errorf("lines = %q", lines)
		}
	})

	t.Run("concurrent writes never interleave", func(t *testing.T) {
		var out bytes.Buffer
		c := New(strings.NewReader(""), &out)

		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = c.WriteMessage(map[string]string{"k": strings.Repeat("x", 256)})
			}()
		}
		wg.Wait()

		lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
		if len(lines) != 50 {
			t.Fatalf("expected 50 lines, got %d", len(lines))
		}
		for _, line := range lines {
			if line != `{"k":"`+strings.Repeat("x", 256)+`"}` {
				t.Fatalf("interleaved write detected: %q", line)
			}
		}
	})

	t.Run("unmarshalable value fails without writing", func(t *testing.T) {
		var out bytes.Buffer
		c := New(strings.NewReader(""), &out)

		if err := c.WriteMessage(func() {}); err == nil {
			t.Fatal("expected marshal error")
		}
		if out.Len() != 0 {
			t.Errorf("expected no bytes written, got %q", out.String())
		}
	})
}

package registry

import (
	"errors"
	"testing"
)

func TestStoreRegister(t *testing.T) {
	t.Run("stores and retrieves entries", func(t *testing.T) {
		s := NewStore[string]()

		if err := s.Register("a", "alpha"); err != nil {
			t.Fatalf("register: %v", err)
		}

		v, ok := s.Get("a")
		if !ok || v != "alpha" {
			t.Errorf("Get(a) = %q, %v", v, ok)
		}
		if _, ok := s.Get("missing"); ok {
			t.Error("expected missing key to be absent")
		}
	})

	t.Run("rejects duplicate keys", func(t *testing.T) {
		s := NewStore[int]()

		if err := s.Register("x", 1); err != nil {
			t.Fatalf("register: %v", err)
		}
		err := s.Register("x", 2)
		if !errors.Is(err, ErrDuplicate) {
			t.Fatalf("expected ErrDuplicate, got %v", err)
		}

		// First registration survives.
		if v, _ := s.Get("x"); v != 1 {
			t.Errorf("Get(x) = %d, want 1", v)
		}
	})

	t.Run("rejects registration after freeze", func(t *testing.T) {
		s := NewStore[int]()
		_ = s.Register("x", 1)
		s.Freeze()

		if err := s.Register("y", 2); !errors.Is(err, ErrFrozen) {
			t.Fatalf("expected ErrFrozen, got %v", err)
		}
		if !s.Frozen() {
			t.Error("expected Frozen() to report true")
		}
		if s.Len() != 1 {
			t.Errorf("Len() = %d, want 1", s.Len())
		}
	})
}

func TestStoreOrder(t *testing.T) {
	s := NewStore[string]()
	keys := []string{"delta", "alpha", "charlie", "bravo"}
	for _, k := range keys {
		if err := s.Register(k, k); err != nil {
			t.Fatalf("register %q: %v", k, err)
		}
	}

	got := s.Keys()
	if len(got) != len(keys) {
		t.Fatalf("Keys() len = %d, want %d", len(got), len(keys))
	}
	for i, k := range keys {
		if got[i] != k {
			t.Errorf("Keys()[%d] = %q, want %q (registration order)", i, got[i], k)
		}
	}

	values := s.Values()
	for i, k := range keys {
		if values[i] != k {
			t.Errorf("Values()[%d] = %q, want %q", i, values[i], k)
		}
	}
}

package store

import (
	"bytes"
	"path/filepath"
	"testing"
)

func backends(t *testing.T) map[string]Backend {
	t.Helper()
	fb, err := NewFileBackend(filepath.Join(t.TempDir(), "data"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { fb.Close() })
	return map[string]Backend{
		"memory": NewMemoryBackend(),
		"file":   fb,
	}
}

func TestStorePutGetRoundtrip(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := New(b)
			id, err := s.Put([]byte("hello world"))
			if err != nil {
				t.Fatal(err)
			}
			got, err := s.Get(id)
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(got, []byte("hello world")) {
				t.Errorf("Get = %q, want %q", got, "hello world")
			}
		})
	}
}

func TestStoreContentIsImmutable(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := New(b)
			id, err := s.Put([]byte("fixed"))
			if err != nil {
				t.Fatal(err)
			}
			first, _ := s.Get(id)
			second, _ := s.Get(id)
			if !bytes.Equal(first, second) {
				t.Fatal("two Gets of the same identifier returned different bytes")
			}
			first[0] = 'X'
			third, _ := s.Get(id)
			if !bytes.Equal(third, []byte("fixed")) {
				t.Fatal("mutating a returned slice affected the stored value")
			}
		})
	}
}

func TestStorePersistLoadRoundtrip(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := New(b)
			if _, err := s.Put([]byte("decoy")); err != nil {
				t.Fatal(err)
			}
			if _, err := s.Persist([]byte("the root blob")); err != nil {
				t.Fatal(err)
			}
			got, err := s.Load()
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(got, []byte("the root blob")) {
				t.Errorf("Load = %q, want %q", got, "the root blob")
			}
		})
	}
}

func TestStoreLoadWithoutPersistFails(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := New(b)
			if _, err := s.Load(); err == nil {
				t.Fatal("expected error loading before any Persist")
			}
		})
	}
}

func TestStoreGetUnknownIdentifierFails(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := New(b)
			if _, err := s.Get(Identifier{Offset: 9999, Length: 4}); err == nil {
				t.Fatal("expected error for unknown identifier")
			}
		})
	}
}

func TestFileBackendReopensExistingData(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	fb1, err := NewFileBackend(dir)
	if err != nil {
		t.Fatal(err)
	}
	id, err := fb1.Put([]byte("persisted"))
	if err != nil {
		t.Fatal(err)
	}
	if err := fb1.PersistRoot(id); err != nil {
		t.Fatal(err)
	}
	if err := fb1.Close(); err != nil {
		t.Fatal(err)
	}

	fb2, err := NewFileBackend(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer fb2.Close()
	root, err := fb2.LoadRoot()
	if err != nil {
		t.Fatal(err)
	}
	got, err := fb2.Get(root)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, []byte("persisted")) {
		t.Errorf("reopened Get = %q, want %q", got, "persisted")
	}

	// A fresh Put after reopening must not collide with the sequence
	// counter recovered from disk.
	id2, err := fb2.Put([]byte("more data"))
	if err != nil {
		t.Fatal(err)
	}
	if id2.Offset == id.Offset {
		t.Error("expected a fresh identifier distinct from the pre-reopen one")
	}
}

func TestIdentifierBytesRoundtrip(t *testing.T) {
	id := Identifier{Offset: 12345, Length: 678}
	got, err := IdentifierFromBytes(id.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if got != id {
		t.Errorf("roundtrip = %+v, want %+v", got, id)
	}
}

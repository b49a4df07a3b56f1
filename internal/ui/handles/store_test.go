package handles

import (
	"strings"
	"testing"
)

func TestMemoryCreateOpenRelease(t *testing.T) {
	store := NewMemory()
	payload := []byte{0x89, 'P', 'N', 'G'}

	handle, err := store.Create(payload, "image/png")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !strings.HasPrefix(handle, Prefix) {
		t.Fatalf("expected %q prefix, got %q", Prefix, handle)
	}

	payload[0] = 0
	blob, ok := store.Open(handle)
	if !ok {
		t.Fatalf("expected handle %q to resolve", handle)
	}
	if blob.Data[0] != 0x89 || blob.ContentType != "image/png" {
		t.Fatalf("store must keep its own copy: %+v", blob)
	}

	store.Release(handle)
	store.Release(handle)
	if _, ok := store.Open(handle); ok {
		t.Fatalf("expected handle to be released")
	}
	if store.Len() != 0 {
		t.Fatalf("expected empty store, got %d", store.Len())
	}
}

func TestMemoryHandlesAreUnique(t *testing.T) {
	store := NewMemory()
	one, _ := store.Create([]byte("a"), "image/png")
	two, _ := store.Create([]byte("b"), "image/png")
	if one == two {
		t.Fatalf("expected distinct handles, got %q twice", one)
	}
	if store.Len() != 2 {
		t.Fatalf("expected 2 live handles, got %d", store.Len())
	}
}

func TestMemoryRejectsEmptyPayload(t *testing.T) {
	if _, err := NewMemory().Create(nil, "image/png"); err != ErrEmpty {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
}

func TestMemoryZeroValueIsUsable(t *testing.T) {
	var store Memory
	if _, ok := store.Open(Prefix + "missing"); ok {
		t.Fatalf("empty store returned a blob")
	}
	handle, err := store.Create([]byte("png"), "image/png")
	if err != nil {
		t.Fatalf("Create on zero value: %v", err)
	}
	if blob, ok := store.Open(handle); !ok || string(blob.Data) != "png" {
		t.Fatalf("Open(%q) = %v, %v", handle, blob, ok)
	}
	store.Release(handle)
	if store.Len() != 0 {
		t.Fatalf("expected empty store after release, got %d", store.Len())
	}
}

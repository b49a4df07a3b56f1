// Package handles keeps rendered images addressable by opaque, locally
// resolvable handles in the spirit of browser object URLs.
package handles

import (
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Prefix is the scheme of handles issued by Memory.
const Prefix = "blob:"

// ErrEmpty is returned when asked to store an empty payload.
var ErrEmpty = errors.New("handles: empty payload")

// Releaser frees the resource behind a handle. Releasing an unknown or
// already released handle is a no-op.
type Releaser interface {
	Release(handle string)
}

// Store creates handles for image payloads.
type Store interface {
	Releaser
	Create(data []byte, contentType string) (string, error)
}

// Nop releases nothing. It is the controller default when no store is wired.
type Nop struct{}

// Release implements Releaser.
func (Nop) Release(string) {}

// Blob is a stored payload.
type Blob struct {
	Data        []byte
	ContentType string
}

// Memory is an in-process Store. The zero value is an empty store ready for use.
type Memory struct {
	mu    sync.RWMutex
	blobs map[string]Blob
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{blobs: make(map[string]Blob)}
}

// Create copies data into the store and returns its handle.
func (m *Memory) Create(data []byte, contentType string) (string, error) {
	if len(data) == 0 {
		return "", ErrEmpty
	}
	handle := Prefix + uuid.New().String()
	blob := Blob{Data: append([]byte(nil), data...), ContentType: contentType}

	m.mu.Lock()
	if m.blobs == nil {
		m.blobs = make(map[string]Blob)
	}
	m.blobs[handle] = blob
	m.mu.Unlock()
	return handle, nil
}

// Open returns the payload behind handle.
//
// The returned bytes are shared with the store and must not be modified.
func (m *Memory) Open(handle string) (Blob, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	blob, ok := m.blobs[handle]
	return blob, ok
}

// Release drops the payload behind handle.
func (m *Memory) Release(handle string) {
	if !strings.HasPrefix(handle, Prefix) {
		return
	}
	m.mu.Lock()
	delete(m.blobs, handle)
	m.mu.Unlock()
}

// Len reports how many handles are live.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blobs)
}

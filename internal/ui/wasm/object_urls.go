//go:build js && wasm

package wasm

import (
	"strings"
	"syscall/js"

	"github.com/mumugogoing/meme-bot/internal/ui/handles"
)

// objectURLStore keeps rendered images as browser Blobs addressed by object
// URLs, which an <img> or download link can use directly.
type objectURLStore struct {
	url js.Value
}

func newObjectURLStore() *objectURLStore {
	return &objectURLStore{url: js.Global().Get("URL")}
}

func (s *objectURLStore) Create(data []byte, contentType string) (string, error) {
	if len(data) == 0 {
		return "", handles.ErrEmpty
	}
	bytes := js.Global().Get("Uint8Array").New(len(data))
	js.CopyBytesToJS(bytes, data)
	blob := js.Global().Get("Blob").New([]any{bytes}, map[string]any{"type": contentType})
	return s.url.Call("createObjectURL", blob).String(), nil
}

func (s *objectURLStore) Release(handle string) {
	if !strings.HasPrefix(handle, handles.Prefix) {
		return
	}
	s.url.Call("revokeObjectURL", handle)
}

// consoleWriter forwards log lines to the browser console.
type consoleWriter struct{}

func (consoleWriter) Write(p []byte) (int, error) {
	console := js.Global().Get("console")
	if console.Truthy() {
		console.Call("log", strings.TrimSuffix(string(p), "\n"))
	}
	return len(p), nil
}

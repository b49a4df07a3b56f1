//go:build js && wasm

package wasm

import (
	"syscall/js"

	"github.com/mumugogoing/meme-bot/internal/ui/effects"
	"github.com/mumugogoing/meme-bot/internal/ui/memeapi"
	"github.com/mumugogoing/meme-bot/internal/ui/state"
	"github.com/mumugogoing/meme-bot/logging"
)

// RunApp mounts the meme builder on #app-root and blocks forever.
func RunApp() {
	done := make(chan struct{})
	window := js.Global()
	Document = window.Get("document")

	root := Document.Call("getElementById", "app-root")
	if !root.Truthy() {
		window.Get("console").Call("error", "app root missing")
		return
	}

	logger := logging.New("wasm", logLevel(window), consoleWriter{})
	store := newObjectURLStore()
	runner := effects.NewRunner(memeapi.New(""), store, logger)
	ctrl := state.New(runner,
		state.WithReleaser(store),
		state.WithLogger(logger),
	)

	app := newApp(root, ctrl)
	app.bind()
	ctrl.Subscribe(app.render)
	app.render(ctrl.State())

	unload := js.FuncOf(func(this js.Value, args []js.Value) any {
		// Close blocks until running effects finish.
		go func() {
			_ = ctrl.Close()
			app.release()
		}()
		return nil
	})
	window.Call("addEventListener", "beforeunload", unload)

	logger.Info("app", "meme builder mounted", nil)
	<-done
}

// logLevel reads ?log=debug style overrides from the page URL.
func logLevel(window js.Value) logging.Level {
	search := window.Get("location").Get("search")
	if search.Type() != js.TypeString {
		return logging.INFO
	}
	params := js.Global().Get("URLSearchParams").New(search.String())
	value := params.Call("get", "log")
	if value.Type() != js.TypeString {
		return logging.INFO
	}
	level, err := logging.ParseLevel(value.String())
	if err != nil {
		return logging.INFO
	}
	return level
}

//go:build js && wasm

package wasm

import (
	"syscall/js"

	"github.com/mumugogoing/meme-bot/internal/ui/model"
	"github.com/mumugogoing/meme-bot/internal/ui/view"
)

// Document references the global browser document for DOM interactions.
var Document js.Value

type dispatcher interface {
	Dispatch(model.Event)
}

// app binds delegated DOM listeners on the root element and re-renders it
// from controller snapshots.
type app struct {
	root     js.Value
	ctrl     dispatcher
	handlers []js.Func
	gate     revisionGate
}

func newApp(root js.Value, ctrl dispatcher) *app {
	return &app{root: root, ctrl: ctrl}
}

// bind installs one listener per DOM event type. Listeners sit on the root so
// they survive innerHTML replacement.
func (a *app) bind() {
	a.listen("input", func(target js.Value) {
		value := target.Get("value").String()
		switch target.Get("id").String() {
		case view.ImageURLInputID:
			a.ctrl.Dispatch(model.EditImageURL{Text: value})
		case view.TopTextInputID:
			a.ctrl.Dispatch(model.EditTopText{Text: value})
		case view.BottomTextInputID:
			a.ctrl.Dispatch(model.EditBottomText{Text: value})
		}
	})
	a.listen("change", func(target js.Value) {
		if target.Get("id").String() == view.TemplateSelectID {
			a.ctrl.Dispatch(model.SelectTemplate{ID: target.Get("value").String()})
		}
	})
	a.listen("click", func(target js.Value) {
		switch target.Get("id").String() {
		case view.GenerateButtonID:
			a.ctrl.Dispatch(model.SubmitRequested{})
		case view.DismissNoticeID:
			a.ctrl.Dispatch(model.DismissNotice{})
		}
	})
}

func (a *app) listen(eventType string, fn func(target js.Value)) {
	handler := js.FuncOf(func(this js.Value, args []js.Value) any {
		if len(args) == 0 {
			return nil
		}
		target := args[0].Get("target")
		if target.Truthy() && target.Get("id").Type() == js.TypeString {
			fn(target)
		}
		return nil
	})
	a.handlers = append(a.handlers, handler)
	a.root.Call("addEventListener", eventType, handler)
}

func (a *app) render(s model.ViewState) {
	a.gate.run(s.Revision, func() {
		snap := captureFocusSnapshot()
		a.root.Set("innerHTML", view.Render(s))
		restoreFocusSnapshot(snap)
	})
}

func (a *app) release() {
	for _, fn := range a.handlers {
		fn.Release()
	}
	a.handlers = a.handlers[:0]
}

type focusSnapshot struct {
	ID    string
	Start int
	End   int
}

func captureFocusSnapshot() focusSnapshot {
	active := Document.Get("activeElement")
	if !active.Truthy() {
		return focusSnapshot{Start: -1, End: -1}
	}
	idValue := active.Get("id")
	if idValue.Type() != js.TypeString {
		return focusSnapshot{Start: -1, End: -1}
	}
	snap := focusSnapshot{ID: idValue.String(), Start: -1, End: -1}
	if start := active.Get("selectionStart"); start.Type() == js.TypeNumber {
		snap.Start = start.Int()
	}
	if end := active.Get("selectionEnd"); end.Type() == js.TypeNumber {
		snap.End = end.Int()
	}
	return snap
}

func restoreFocusSnapshot(snap focusSnapshot) {
	if snap.ID == "" {
		return
	}
	target := Document.Call("getElementById", snap.ID)
	if !target.Truthy() {
		return
	}
	target.Call("focus")
	if snap.Start >= 0 && snap.End >= 0 {
		if setter := target.Get("setSelectionRange"); setter.Type() == js.TypeFunction {
			target.Call("setSelectionRange", snap.Start, snap.End)
		}
	}
}

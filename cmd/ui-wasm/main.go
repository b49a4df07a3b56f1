//go:build js && wasm

package main

import "github.com/mumugogoing/meme-bot/internal/ui/wasm"

func main() {
	wasm.RunApp()
}

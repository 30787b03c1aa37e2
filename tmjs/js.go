//go:build js && wasm

package main

import (
	"syscall/js"

	"oss.terrastruct.com/texmath/tmjs/tmwasm"
)

func main() {
	tmwasm.Init()

	api := tmwasm.NewTexmathAPI()
	api.Register("renderMath", tmwasm.JSRenderMath)
	api.Register("version", tmwasm.JSVersion)
	api.ExportTo(js.Global())

	if cb := js.Global().Get("onWasmInitialized"); !cb.IsUndefined() {
		cb.Invoke()
	}
	select {}
}

//go:build js && wasm

package tmwasm

import (
	"syscall/js"
)

func JSRenderMath(args []js.Value) (interface{}, error) {
	if len(args) < 1 {
		return nil, &WASMError{Message: "missing JSON argument", Code: 400}
	}
	return RenderMath(args[0].String())
}

func JSVersion(args []js.Value) (interface{}, error) {
	return Version()
}

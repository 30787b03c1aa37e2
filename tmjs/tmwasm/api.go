//go:build js && wasm

package tmwasm

import (
	"syscall/js"
)

type TexmathAPI struct {
	exports map[string]js.Func
}

func NewTexmathAPI() *TexmathAPI {
	return &TexmathAPI{
		exports: make(map[string]js.Func),
	}
}

func (api *TexmathAPI) Register(name string, fn func(args []js.Value) (interface{}, error)) {
	api.exports[name] = js.FuncOf(func(this js.Value, args []js.Value) any {
		return call(func() (interface{}, error) {
			return fn(args)
		})
	})
}

// ExportTo sets the texmath namespace on target.
func (api *TexmathAPI) ExportTo(target js.Value) {
	ns := make(map[string]interface{})
	for name, fn := range api.exports {
		ns[name] = fn
	}
	target.Set("texmath", js.ValueOf(ns))
}

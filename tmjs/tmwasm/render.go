package tmwasm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime/debug"

	"oss.terrastruct.com/texmath/lib/log"
	"oss.terrastruct.com/texmath/lib/version"
	"oss.terrastruct.com/texmath/tmcompiler"
	"oss.terrastruct.com/texmath/tmlib"
	"oss.terrastruct.com/texmath/tmrenderers/tmsvg"
)

// Init prepares the runtime before any function is exported. Panics print every
// goroutine so that a crash in the browser console is debuggable.
func Init() {
	debug.SetTraceback("all")
}

// RenderMath handles a JSON RenderMathRequest and returns the SVG.
func RenderMath(input string) (interface{}, error) {
	var req RenderMathRequest
	if err := json.Unmarshal([]byte(input), &req); err != nil {
		return nil, &WASMError{Message: "invalid JSON input", Code: 400}
	}
	if req.Expr == nil {
		return nil, &WASMError{Message: "missing 'expr' field in input JSON", Code: 400}
	}

	opts := &tmsvg.RenderOpts{}
	if req.Opts != nil {
		opts.Fill = req.Opts.Fill
		opts.NoXMLTag = req.Opts.NoXMLTag
	}

	ctx := log.Stderr(context.Background())
	svg, err := tmlib.RenderMath(ctx, *req.Expr, opts)
	if err != nil {
		var ds tmcompiler.Diagnostics
		if errors.As(err, &ds) || errors.Is(err, tmlib.ErrNoPages) || errors.Is(err, tmsvg.ErrInvalidFill) {
			return nil, &WASMError{Message: err.Error(), Code: 400}
		}
		return nil, &WASMError{Message: err.Error(), Code: 500}
	}
	return svg, nil
}

func Version() (interface{}, error) {
	return version.Version, nil
}

// call runs fn and encodes its outcome as a WASMResponse. Panics become 500 errors.
func call(fn func() (interface{}, error)) (result string) {
	defer func() {
		if r := recover(); r != nil {
			resp := WASMResponse{
				Error: &WASMError{
					Message: fmt.Sprintf("panic recovered: %v\n%s", r, debug.Stack()),
					Code:    500,
				},
			}
			jsonResp, _ := json.Marshal(resp)
			result = string(jsonResp)
		}
	}()

	data, err := fn()
	if err != nil {
		wasmErr, ok := err.(*WASMError)
		if !ok {
			wasmErr = &WASMError{
				Message: err.Error(),
				Code:    500,
			}
		}
		jsonResp, _ := json.Marshal(WASMResponse{Error: wasmErr})
		return string(jsonResp)
	}

	jsonResp, _ := json.Marshal(WASMResponse{Data: data})
	return string(jsonResp)
}

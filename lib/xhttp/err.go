package xhttp

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"oss.terrastruct.com/cmdlog"
)

// Error is answered with Code and the JSON body {"error": Message}.
type Error struct {
	Code    int
	Message string
	Err     error
}

// Errorf creates an Error whose message is shown to the client. An empty msg becomes
// the status text of code.
func Errorf(code int, msg string, format string, v ...interface{}) error {
	if msg == "" {
		msg = http.StatusText(code)
	}
	return Error{code, msg, fmt.Errorf(format, v...)}
}

func (e Error) Unwrap() error {
	return e.Err
}

func (e Error) Error() string {
	return fmt.Sprintf("http %d %q: %v", e.Code, e.Message, e.Err)
}

// HandlerFunc is like http.HandlerFunc but returns an error.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// HandlerFuncAdapter serves a HandlerFunc. Returned errors are logged and answered
// with the status of an Error, 500 for any other error.
type HandlerFuncAdapter struct {
	Log  *cmdlog.Logger
	Func HandlerFunc
}

func (a HandlerFuncAdapter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := a.Func(w, r); err != nil {
		handleError(a.Log, w, err)
	}
}

func handleError(clog *cmdlog.Logger, w http.ResponseWriter, err error) {
	var herr Error
	if !errors.As(err, &herr) || herr.Code < 400 || herr.Code > 599 {
		herr = Error{Code: http.StatusInternalServerError, Message: http.StatusText(http.StatusInternalServerError)}
	}
	if herr.Code < 500 {
		clog.Warn.Printf("%d: %v", herr.Code, err)
	} else {
		clog.Error.Printf("%d: %v", herr.Code, err)
	}

	// A websocket or a partial response cannot be answered anymore.
	if ww, ok := w.(*responseWriter); ok && ww.written {
		return
	}
	writeJSON(clog, w, herr.Code, map[string]string{"error": herr.Message})
}

func writeJSON(clog *cmdlog.Logger, w http.ResponseWriter, code int, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		clog.Error.Printf("failed to encode response: %v", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(b)
}

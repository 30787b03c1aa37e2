package xhttp

import (
	"bufio"
	"fmt"
	"log"
	"net"
	"net/http"
	"runtime/debug"
	"time"

	"golang.org/x/text/message"

	"oss.terrastruct.com/cmdlog"
)

// responseWriter records the status and length of a response. It stays a Hijacker so
// that the preview websocket can upgrade through it.
type responseWriter struct {
	http.ResponseWriter

	written bool
	status  int
	length  int
}

var _ http.Hijacker = &responseWriter{}

func (rw *responseWriter) WriteHeader(statusCode int) {
	if !rw.written {
		rw.written = true
		rw.status = statusCode
	}
	rw.ResponseWriter.WriteHeader(statusCode)
}

func (rw *responseWriter) Write(p []byte) (int, error) {
	if !rw.written && len(p) > 0 {
		rw.written = true
		rw.status = http.StatusOK
	}
	rw.length += len(p)
	return rw.ResponseWriter.Write(p)
}

func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("%T cannot be hijacked", rw.ResponseWriter)
	}
	conn, brw, err := hj.Hijack()
	if err == nil {
		rw.written = true
		rw.status = http.StatusSwitchingProtocols
	}
	return conn, brw, err
}

// Log logs every request to clog at the level of its status and answers handler
// panics with a 500.
func Log(clog *cmdlog.Logger, next http.Handler) http.Handler {
	printer := message.NewPrinter(message.MatchLanguage("en"))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rw := &responseWriter{ResponseWriter: w}
		start := time.Now()
		defer func() {
			if rec := recover(); rec != nil {
				clog.Error.Printf("%s %s: panic: %v\n%s", r.Method, r.URL, rec, debug.Stack())
				if !rw.written {
					writeJSON(clog, w, http.StatusInternalServerError, map[string]string{
						"error": http.StatusText(http.StatusInternalServerError),
					})
				}
			}
		}()

		next.ServeHTTP(rw, r)
		dur := time.Since(start)

		if !rw.written {
			clog.Warn.Printf("%s %s %v: no response written", r.Method, r.URL, dur)
			return
		}
		if rw.status == http.StatusSwitchingProtocols {
			clog.Success.Printf("%s %s %v: upgraded", r.Method, r.URL, dur)
			return
		}

		var l *log.Logger
		switch {
		case rw.status < 300:
			l = clog.Success
		case rw.status < 400:
			l = clog.Info
		case rw.status < 500:
			l = clog.Warn
		default:
			l = clog.Error
		}
		l.Printf("%s %s %d %sB %v", r.Method, r.URL, rw.status, printer.Sprint(rw.length), dur)
	})
}

package gphttp

import (
	"context"
	"errors"
	"net/http"
	"syscall"
)

// ServerError is for handling server errors.
//
// It logs the error and responds with msg, or the status text when msg is empty.
// Status code defaults to http.StatusInternalServerError.
func ServerError(w http.ResponseWriter, r *http.Request, err error, msg string, code ...int) {
	switch {
	case err == nil,
		errors.Is(err, context.Canceled),
		errors.Is(err, syscall.EPIPE),
		errors.Is(err, syscall.ECONNRESET):
		return
	}
	LogError(r).Msg(err.Error())
	if len(code) == 0 {
		code = []int{http.StatusInternalServerError}
	}
	if msg == "" {
		msg = http.StatusText(code[0])
	}
	http.Error(w, msg, code[0])
}

// NotFound returns a Not Found response.
func NotFound(w http.ResponseWriter) {
	http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
}

// Forbidden returns a Forbidden response.
func Forbidden(w http.ResponseWriter) {
	http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
}

// MethodNotAllowed responds 405 with the Allow header set to allowed.
func MethodNotAllowed(w http.ResponseWriter, allowed string) {
	w.Header().Set("Allow", allowed)
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}

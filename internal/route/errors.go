package route

import (
	"errors"
	"io/fs"
	"net/http"

	"github.com/maskserve/maskserve/internal/gperr"
	"github.com/maskserve/maskserve/internal/net/gphttp"
)

var ErrInvalidURI = gperr.New("invalid URI")

func serveError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		gphttp.NotFound(w)
	case errors.Is(err, ErrEscapesRoot):
		gphttp.LogWarn(r).Msg(err.Error())
		gphttp.Forbidden(w)
	case errors.Is(err, ErrInvalidURI):
		gphttp.ServerError(w, r, err, "Invalid URI")
	default:
		gphttp.ServerError(w, r, err, "Something went wrong: "+err.Error())
	}
}

package route

import (
	"errors"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/felixge/httpsnoop"
	"github.com/maskserve/maskserve/internal/gperr"
	"github.com/maskserve/maskserve/internal/net/gphttp"
	"github.com/maskserve/maskserve/internal/net/gphttp/httpheaders"
)

const (
	indexFile    = "index.html"
	htmlExt      = ".html"
	allowMethods = "GET, HEAD"
)

// StaticRouter serves the web front-end.
//
// "/about" falls back to "/about.html" when there is no such file,
// directories resolve to their index.html.
type StaticRouter struct {
	dir dir
}

func NewStaticRouter(root string) (*StaticRouter, gperr.Error) {
	d, err := newDir(root)
	if err != nil {
		return nil, err
	}
	return &StaticRouter{dir: d}, nil
}

// ServeHTTP implements http.Handler.
func (s *StaticRouter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// set before anything is written so error responses carry them too
	httpheaders.SetIsolationHeaders(w.Header())

	if !allowedMethod(r.Method) {
		gphttp.MethodNotAllowed(w, allowMethods)
		return
	}

	f, st, name, err := s.resolve(r.URL.Path)
	if err != nil {
		serveError(w, r, err)
		return
	}
	defer f.Close()
	http.ServeContent(keepIsolationHeaders(w), r, name, st.ModTime(), f)
}

// keepIsolationHeaders restores the isolation headers on error responses,
// ServeContent deletes Cache-Control before writing them.
func keepIsolationHeaders(w http.ResponseWriter) http.ResponseWriter {
	h := w.Header()
	return httpsnoop.Wrap(w, httpsnoop.Hooks{
		WriteHeader: func(next httpsnoop.WriteHeaderFunc) httpsnoop.WriteHeaderFunc {
			return func(code int) {
				if code >= http.StatusBadRequest {
					httpheaders.SetIsolationHeaders(h)
				}
				next(code)
			}
		},
	})
}

func (s *StaticRouter) resolve(p string) (*os.File, fs.FileInfo, string, error) {
	name := path.Clean("/" + p)
	f, st, served, err := s.openFile(name)
	if err == nil || !errors.Is(err, fs.ErrNotExist) {
		return f, st, served, err
	}
	if strings.HasSuffix(name, htmlExt) || strings.HasSuffix(p, "/") {
		return nil, nil, "", err
	}

	// name is decoded, validate the escaped form of the fallback
	fallback := name + htmlExt
	if _, err := url.Parse((&url.URL{Path: fallback}).EscapedPath()); err != nil {
		return nil, nil, "", ErrInvalidURI.With(err)
	}
	return s.openFile(fallback)
}

// openFile opens name, or the index.html of name if it is a directory.
// The returned name is the path of the opened file.
func (s *StaticRouter) openFile(name string) (*os.File, fs.FileInfo, string, error) {
	f, st, err := s.dir.open(name)
	if err != nil {
		return nil, nil, "", err
	}
	if !st.IsDir() {
		return f, st, name, nil
	}
	f.Close()
	name = path.Join(name, indexFile)
	f, st, err = s.dir.open(name)
	if err != nil {
		return nil, nil, "", err
	}
	if st.IsDir() {
		f.Close()
		return nil, nil, "", fs.ErrNotExist
	}
	return f, st, name, nil
}

func allowedMethod(method string) bool {
	return method == http.MethodGet || method == http.MethodHead
}

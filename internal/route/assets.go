package route

import (
	"net/http"

	"github.com/maskserve/maskserve/internal/gperr"
	"github.com/maskserve/maskserve/internal/net/gphttp"
)

// AssetMount serves files verbatim, without index files or fallback.
//
// Mount it behind http.StripPrefix.
type AssetMount struct {
	dir dir
}

func NewAssetMount(root string) (*AssetMount, gperr.Error) {
	d, err := newDir(root)
	if err != nil {
		return nil, err
	}
	return &AssetMount{dir: d}, nil
}

// ServeHTTP implements http.Handler.
func (m *AssetMount) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !allowedMethod(r.Method) {
		gphttp.MethodNotAllowed(w, allowMethods)
		return
	}

	f, st, err := m.dir.open(r.URL.Path)
	if err != nil {
		serveError(w, r, err)
		return
	}
	defer f.Close()

	if st.IsDir() {
		gphttp.NotFound(w)
		return
	}
	// model files are large and fetched in pieces, ServeContent handles Range
	http.ServeContent(w, r, st.Name(), st.ModTime(), f)
}

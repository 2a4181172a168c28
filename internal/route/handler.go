package route

import (
	"net/http"
	"strings"

	"github.com/maskserve/maskserve/internal/common"
	"github.com/maskserve/maskserve/internal/config"
	"github.com/maskserve/maskserve/internal/gperr"
)

// NewHandler dispatches /models/ to the asset mount over cfg.OnnxDir
// and everything else to the static router over cfg.FrontDir.
func NewHandler(cfg *config.Config) (http.Handler, gperr.Error) {
	errs := gperr.NewBuilder("failed to create routes")
	front, err := NewStaticRouter(cfg.FrontDir)
	errs.Add(err)
	assets, err := NewAssetMount(cfg.OnnxDir)
	errs.Add(err)
	if err := errs.Error(); err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle(common.ModelsPathPrefix, http.StripPrefix(strings.TrimSuffix(common.ModelsPathPrefix, "/"), assets))
	mux.Handle("/", front)
	return mux, nil
}

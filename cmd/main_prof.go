//go:build pprof

package main

import (
	"net/http"
	_ "net/http/pprof"
	"runtime"

	"github.com/maskserve/maskserve/internal/common"
	"github.com/maskserve/maskserve/internal/logging"
)

func initProfiling() {
	runtime.GOMAXPROCS(2)
	go func() {
		logging.Warn().Str("addr", common.PprofAddr).Msg("pprof enabled")
		logging.Err(http.ListenAndServe(common.PprofAddr, nil)).Msg("pprof server stopped")
	}()
}

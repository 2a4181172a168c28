package httpheaders

import "net/http"

const (
	HeaderCacheControl = "Cache-Control"
	HeaderCOOP         = "Cross-Origin-Opener-Policy"
	HeaderCOEP         = "Cross-Origin-Embedder-Policy"
	HeaderAllow        = "Allow"
	HeaderLocation     = "Location"
	HeaderAcceptRanges = "Accept-Ranges"
)

// SetIsolationHeaders disables caching and enables cross-origin isolation,
// which browsers require before exposing SharedArrayBuffer to wasm threads.
func SetIsolationHeaders(h http.Header) {
	h.Set(HeaderCacheControl, "no-store")
	h.Set(HeaderCOOP, "same-origin")
	h.Set(HeaderCOEP, "require-corp")
}

package httpheaders

import (
	"net/http"
	"testing"

	. "github.com/maskserve/maskserve/internal/utils/testing"
)

func TestSetIsolationHeaders(t *testing.T) {
	h := http.Header{}
	h.Set(HeaderCacheControl, "max-age=3600")
	SetIsolationHeaders(h)
	ExpectEqual(t, h.Get(HeaderCacheControl), "no-store")
	ExpectEqual(t, h.Get(HeaderCOOP), "same-origin")
	ExpectEqual(t, h.Get(HeaderCOEP), "require-corp")
	ExpectEqual(t, len(h.Values(HeaderCacheControl)), 1)
}

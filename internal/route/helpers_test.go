package route

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/maskserve/maskserve/internal/utils/testing"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		ExpectNoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		ExpectNoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}

func expectIsolationHeaders(t *testing.T, h interface{ Get(string) string }) {
	t.Helper()
	ExpectEqual(t, h.Get("Cache-Control"), "no-store")
	ExpectEqual(t, h.Get("Cross-Origin-Opener-Policy"), "same-origin")
	ExpectEqual(t, h.Get("Cross-Origin-Embedder-Policy"), "require-corp")
}

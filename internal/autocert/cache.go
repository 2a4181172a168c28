package autocert

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/maskserve/maskserve/internal/gperr"
	"github.com/maskserve/maskserve/internal/utils"
)

// DirCache persists one PEM bundle per domain as <dir>/<domain>.pem.
type DirCache struct {
	dir string
}

func NewDirCache(dir string) (*DirCache, gperr.Error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, gperr.Wrap(err, "create cert cache directory")
	}
	return &DirCache{dir: dir}, nil
}

func (c *DirCache) Dir() string {
	return c.dir
}

func (c *DirCache) certPath(domain string) string {
	return filepath.Join(c.dir, domain+certFileExt)
}

// Read returns the raw bundle stored for domain.
func (c *DirCache) Read(domain string) ([]byte, error) {
	return os.ReadFile(c.certPath(domain))
}

// Load reads and parses the bundle stored for domain.
// A missing file yields an error matching os.ErrNotExist.
func (c *DirCache) Load(domain string) (*Entry, gperr.Error) {
	data, err := c.Read(domain)
	if err != nil {
		return nil, gperr.Wrap(err)
	}
	return ParseEntry(domain, data)
}

// Store replaces the bundle for domain by writing a temporary file
// and renaming it over the old one.
func (c *DirCache) Store(domain string, b *Bundle) gperr.Error {
	if err := utils.WriteFileAtomic(c.certPath(domain), b.PEM(), 0o600); err != nil {
		return gperr.Wrap(err, "write cert cache")
	}
	return nil
}

// List returns the domains with a bundle in the cache directory.
func (c *DirCache) List() ([]string, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, err
	}
	var domains []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if domain, ok := c.domainOf(e.Name()); ok {
			domains = append(domains, domain)
		}
	}
	return domains, nil
}

// domainOf maps a file name in the cache directory to its domain.
func (c *DirCache) domainOf(name string) (string, bool) {
	name = filepath.Base(name)
	if strings.HasPrefix(name, accountMarker) || !strings.HasSuffix(name, certFileExt) {
		return "", false
	}
	domain := strings.TrimSuffix(name, certFileExt)
	return domain, validDomain(domain)
}

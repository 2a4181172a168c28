package route

import (
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/maskserve/maskserve/internal/gperr"
)

var (
	ErrEscapesRoot = gperr.New("path escapes root")
	ErrNotDir      = gperr.New("not a directory")
)

// dir is a directory tree that only hands out files
// whose real path stays inside it.
type dir struct {
	root string // absolute, symlinks resolved
}

func newDir(root string) (dir, gperr.Error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return dir{}, gperr.Wrap(err).Subject(root)
	}
	real, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return dir{}, gperr.Wrap(err).Subject(root)
	}
	st, err := os.Stat(real)
	if err != nil {
		return dir{}, gperr.Wrap(err).Subject(root)
	}
	if !st.IsDir() {
		return dir{}, ErrNotDir.Subject(root)
	}
	return dir{root: real}, nil
}

// open opens the url path name under the root.
//
// name is cleaned lexically first, so ".." segments never leave the root.
// Symlinks are then resolved and must still point inside the root.
func (d dir) open(name string) (*os.File, fs.FileInfo, error) {
	name = path.Clean("/" + name)
	real, err := filepath.EvalSymlinks(filepath.Join(d.root, filepath.FromSlash(name)))
	if err != nil {
		if isNotFound(err) {
			return nil, nil, fs.ErrNotExist
		}
		return nil, nil, err
	}
	if !d.contains(real) {
		return nil, nil, ErrEscapesRoot.Subject(name)
	}
	f, err := os.Open(real)
	if err != nil {
		if isNotFound(err) {
			return nil, nil, fs.ErrNotExist
		}
		return nil, nil, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return f, st, nil
}

func (d dir) contains(p string) bool {
	if p == d.root {
		return true
	}
	return strings.HasPrefix(p, strings.TrimSuffix(d.root, string(filepath.Separator))+string(filepath.Separator))
}

// "a/file.txt/b" fails with ENOTDIR, which is a miss as well.
func isNotFound(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR)
}

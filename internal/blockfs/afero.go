package blockfs

import (
	"bufio"
	"fmt"
	"os"
	"path"

	"github.com/spf13/afero"
)

// AferoFS implements FS over an afero filesystem. Production wraps the
// mount point in an afero.BasePathFs over the OS filesystem; tests hand in
// an afero.MemMapFs.
type AferoFS struct {
	fs afero.Fs
}

// New returns an FS over the given afero filesystem.
func New(fs afero.Fs) *AferoFS {
	return &AferoFS{fs: fs}
}

// NewAtMount returns an FS rooted at the given OS mount point.
func NewAtMount(mount string) *AferoFS {
	return New(afero.NewBasePathFs(afero.NewOsFs(), mount))
}

// Mount checks that the medium root is reachable. A missing or unreadable
// root means the card is absent or the mount is stale.
func (a *AferoFS) Mount() error {
	if _, err := a.fs.Stat("/"); err != nil {
		return fmt.Errorf("medium not reachable: %w", err)
	}
	return nil
}

func (a *AferoFS) Exists(p string) (bool, error) {
	return afero.Exists(a.fs, p)
}

func (a *AferoFS) Mkdir(p string) error {
	return a.fs.Mkdir(p, 0o755)
}

func (a *AferoFS) Remove(p string) error {
	return a.fs.Remove(p)
}

func (a *AferoFS) ReadDir(dir string) ([]DirEntry, error) {
	infos, err := afero.ReadDir(a.fs, dir)
	if err != nil {
		return nil, err
	}

	entries := make([]DirEntry, 0, len(infos))
	for _, fi := range infos {
		entries = append(entries, DirEntry{
			Path: path.Join(dir, fi.Name()),
			Dir:  fi.IsDir(),
			Size: fi.Size(),
		})
	}

	return entries, nil
}

func (a *AferoFS) OpenRead(p string) (ReadStream, error) {
	f, err := a.fs.Open(p)
	if err != nil {
		return nil, err
	}
	return &reader{f: f, br: bufio.NewReader(f)}, nil
}

func (a *AferoFS) OpenWrite(p string) (WriteStream, error) {
	return a.fs.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
}

// reader adds the one-byte lookahead the frame codec needs on top of an
// afero file.
type reader struct {
	f  afero.File
	br *bufio.Reader
}

func (r *reader) Peek() (byte, error) {
	b, err := r.br.Peek(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *reader) ReadByte() (byte, error) {
	return r.br.ReadByte()
}

func (r *reader) Read(p []byte) (int, error) {
	return r.br.Read(p)
}

func (r *reader) Close() error {
	return r.f.Close()
}

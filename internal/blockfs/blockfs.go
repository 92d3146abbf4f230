// Package blockfs abstracts the filesystem on the removable flash medium.
// The store consumes this narrow capability instead of a process-wide
// filesystem object, so the same code runs over the real medium in
// production and an in-memory filesystem in tests.
package blockfs

import "io"

// DirEntry is one child of a directory as the medium yields it. Path is the
// full path from the filesystem root, matching how block-device libraries
// report directory children.
type DirEntry struct {
	Path string
	Dir  bool
	Size int64
}

// ReadStream is a readable recording stream. Peek returns the next byte
// without consuming it; end-of-stream is reported as io.EOF from Peek,
// which is how readers distinguish "no more frames" from a read failure.
type ReadStream interface {
	Peek() (byte, error)
	ReadByte() (byte, error)
	Read(p []byte) (int, error)
	Close() error
}

// WriteStream is an append-only recording stream.
type WriteStream interface {
	io.Writer
	Close() error
}

// FS is the set of filesystem operations the store needs from the medium.
// Every call may block on the shared bus; callers hold the bus lock for the
// duration of each call.
type FS interface {
	// Mount verifies the medium is reachable. Called at store
	// construction and again on every reset.
	Mount() error

	Exists(path string) (bool, error)
	Mkdir(path string) error
	Remove(path string) error
	ReadDir(path string) ([]DirEntry, error)
	OpenRead(path string) (ReadStream, error)
	OpenWrite(path string) (WriteStream, error)
}

// Package store implements the recording store: a stateful facade over the
// flash medium that creates, appends to, enumerates, reads back, and deletes
// fixed-shape numeric recordings.
//
// The store is a strict session state machine. At most one recording is
// open at any moment; Begin/Open move Idle to Recording/Reading and End
// moves back to Idle. Any filesystem failure latches the store into
// StateError with a diagnostic kind, and Reset is the only way out.
//
// The store is not internally reentrant: concurrent calls on the same store
// must be serialized by the caller. What the store does guard is the shared
// bus to the medium — every filesystem call runs under the bus lock handed
// in at construction, held for the minimal span and released before any
// operation returns.
package store

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/ecglab/recstore/internal/blockfs"
	"github.com/ecglab/recstore/internal/buslock"
	"github.com/ecglab/recstore/internal/record"
)

const (
	// RootDir is the fixed directory holding all recordings on the medium.
	RootDir = "/recordings"

	// Suffix is the recording file extension. Enumeration matches it
	// case-insensitively.
	Suffix = ".rec"

	// MaxRecordings bounds the five-digit naming range 00000..09999.
	MaxRecordings = 10000
)

// Store mediates all access to the recording directory on the medium.
type Store struct {
	fs  blockfs.FS
	bus buslock.Locker

	state   State
	errKind ErrorKind

	// nextIndex is the search hint for Begin. It only ever grows, and only
	// after a successful End of a write session, so names are never reused
	// within a process lifetime even across erases.
	nextIndex int

	current string
	w       blockfs.WriteStream
	r       blockfs.ReadStream
}

// New creates the store and attempts to mount the medium and create the
// recording directory. On failure the store starts latched in StateError;
// the caller can observe the kind via Err and recover with Reset.
func New(fs blockfs.FS, bus buslock.Locker) *Store {
	s := &Store{fs: fs, bus: bus, errKind: KindNone}
	if !s.init() {
		slog.Error("initial mount failed", "kind", s.errKind)
	}
	return s
}

// init mounts the medium and ensures RootDir exists. Shared by New and
// Reset.
func (s *Store) init() bool {
	s.bus.Lock()
	defer s.bus.Unlock()

	if err := s.fs.Mount(); err != nil {
		slog.Error("mount failed", "error", err)
		s.latch(KindCannotInitialize)
		return false
	}

	exists, err := s.fs.Exists(RootDir)
	if err != nil {
		slog.Error("probing recording directory failed", "error", err)
		s.latch(KindFileSystemError)
		return false
	}
	if !exists {
		if err := s.fs.Mkdir(RootDir); err != nil {
			slog.Error("creating recording directory failed", "dir", RootDir, "error", err)
			s.latch(KindFileSystemError)
			return false
		}
	}

	s.state = StateIdle
	return true
}

// latch records a fatal diagnostic and moves the store to StateError.
// Callers must hold whatever invariants they need; latch itself never
// touches the filesystem.
func (s *Store) latch(kind ErrorKind) {
	slog.Error("store error latched", "kind", kind)
	s.state = StateError
	s.errKind = kind
}

// inState is the single state guard. A mismatch logs the rejection and the
// operation returns its documented failure value without side effects.
func (s *Store) inState(want State) bool {
	if s.state != want {
		slog.Error("operation rejected", "want", want, "state", s.state)
		return false
	}
	return true
}

// Reset is the sole recovery path from StateError. It re-runs the mount
// sequence; on success the latched kind is cleared and the store is Idle
// again. From any other state it fails without side effects.
func (s *Store) Reset() bool {
	if !s.inState(StateError) {
		return false
	}

	// Drop any handle left open by the session that failed.
	s.bus.Lock()
	if s.w != nil {
		s.w.Close()
		s.w = nil
	}
	if s.r != nil {
		s.r.Close()
		s.r = nil
	}
	s.bus.Unlock()
	s.current = ""

	if !s.init() {
		slog.Error("reset failed", "kind", s.errKind)
		return false
	}

	s.errKind = KindNone
	return true
}

// List enumerates the recordings on the medium. Order is whatever the
// filesystem yields. A directory-open failure latches CannotOpenFile and
// returns nil.
func (s *Store) List() []Entry {
	if !s.inState(StateIdle) {
		return nil
	}

	s.bus.Lock()
	defer s.bus.Unlock()

	children, err := s.fs.ReadDir(RootDir)
	if err != nil {
		slog.Error("cannot open recording directory", "dir", RootDir, "error", err)
		s.latch(KindCannotOpenFile)
		return nil
	}

	var entries []Entry
	for _, c := range children {
		if c.Dir {
			continue
		}
		name, ok := recordingName(c.Path)
		if !ok {
			continue
		}
		entries = append(entries, Entry{Name: name, Size: c.Size})
	}

	return entries
}

// Erase removes the named recording. A missing recording returns false
// without latching; a failed removal latches CannotRemoveFile. Erasing
// never affects the naming hint, so erased names are not reused.
func (s *Store) Erase(name string) bool {
	if !s.inState(StateIdle) {
		return false
	}

	s.bus.Lock()
	defer s.bus.Unlock()

	path := recordingPath(name)

	exists, err := s.fs.Exists(path)
	if err != nil {
		slog.Error("probing recording failed", "path", path, "error", err)
		s.latch(KindFileSystemError)
		return false
	}
	if !exists {
		return false
	}

	if err := s.fs.Remove(path); err != nil {
		slog.Error("cannot remove recording", "path", path, "error", err)
		s.latch(KindCannotRemoveFile)
		return false
	}

	return true
}

// Begin opens a new recording under the smallest unused five-digit name at
// or above the search hint and moves the store to StateRecording. Returns
// the chosen name. Exhausting the naming range latches TooManyFiles.
func (s *Store) Begin() (string, bool) {
	if !s.inState(StateIdle) {
		return "", false
	}

	s.bus.Lock()
	defer s.bus.Unlock()

	var name, path string
	for i := s.nextIndex; i < MaxRecordings; i++ {
		candidate := fmt.Sprintf("%05d", i)
		candidatePath := recordingPath(candidate)

		exists, err := s.fs.Exists(candidatePath)
		if err != nil {
			slog.Error("probing candidate failed", "path", candidatePath, "error", err)
			s.latch(KindFileSystemError)
			return "", false
		}
		if !exists {
			name, path = candidate, candidatePath
			break
		}
	}

	if name == "" {
		slog.Error("no free recording name", "max", MaxRecordings)
		s.latch(KindTooManyFiles)
		return "", false
	}

	w, err := s.fs.OpenWrite(path)
	if err != nil {
		slog.Error("cannot open recording for write", "path", path, "error", err)
		s.latch(KindCannotOpenFile)
		return "", false
	}

	s.w = w
	s.current = name
	s.state = StateRecording

	slog.Info("created new recording", "name", name)

	return name, true
}

// Append writes one frame of 1..255 floats to the open write session. An
// empty or oversized vector is rejected with false and no state change; a
// write failure latches FileSystemError.
func (s *Store) Append(vals []float32) bool {
	if !s.inState(StateRecording) {
		return false
	}

	frame, err := record.EncodeFrame(vals)
	if err != nil {
		slog.Error("frame rejected", "error", err)
		return false
	}

	s.bus.Lock()
	defer s.bus.Unlock()

	if _, err := s.w.Write(frame); err != nil {
		slog.Error("cannot write frame", "name", s.current, "error", err)
		s.latch(KindFileSystemError)
		return false
	}

	return true
}

// Open starts a read session on the named recording. A missing recording
// or a failed open returns false with no state change.
func (s *Store) Open(name string) bool {
	if !s.inState(StateIdle) {
		return false
	}

	s.bus.Lock()
	defer s.bus.Unlock()

	path := recordingPath(name)

	exists, err := s.fs.Exists(path)
	if err != nil {
		slog.Error("probing recording failed", "path", path, "error", err)
		s.latch(KindFileSystemError)
		return false
	}
	if !exists {
		slog.Error("no such recording", "name", name)
		return false
	}

	r, err := s.fs.OpenRead(path)
	if err != nil {
		slog.Error("cannot open recording", "path", path, "error", err)
		return false
	}

	s.r = r
	s.current = name
	s.state = StateReading

	return true
}

// Next reads the next frame of the open read session into buf.
//
//   - 0 means end of recording (or a latched failure; check Err).
//   - A positive n means buf[:n] now holds the frame.
//   - A negative -n means the next frame holds n floats but buf is too
//     small; nothing was consumed, retry with a larger buffer.
//
// A truncated frame, such as the tail left by a crash mid-append, latches
// FileSystemError.
func (s *Store) Next(buf []float32) int {
	if !s.inState(StateReading) {
		return 0
	}

	s.bus.Lock()
	defer s.bus.Unlock()

	n, err := record.DecodeFrame(s.r, buf)
	if err != nil {
		if err == io.EOF {
			return 0
		}
		slog.Error("cannot read frame", "name", s.current, "error", err)
		s.latch(KindFileSystemError)
		return 0
	}

	return n
}

// End closes the open session and returns to StateIdle. Ending a write
// session advances the naming hint, so the name is consumed even if
// nothing was appended. Without an open session End returns false.
func (s *Store) End() bool {
	switch s.state {
	case StateRecording:
		s.bus.Lock()
		err := s.w.Close()
		s.bus.Unlock()
		if err != nil {
			slog.Error("closing recording failed", "name", s.current, "error", err)
		}

		s.w = nil
		s.state = StateIdle
		s.nextIndex++
		s.current = ""
		return true

	case StateReading:
		s.bus.Lock()
		err := s.r.Close()
		s.bus.Unlock()
		if err != nil {
			slog.Error("closing recording failed", "name", s.current, "error", err)
		}

		s.r = nil
		s.state = StateIdle
		s.current = ""
		return true

	default:
		slog.Error("no open session", "state", s.state)
		return false
	}
}

// IsBusy reports whether a session is open. Never blocks.
func (s *Store) IsBusy() bool {
	return s.state == StateRecording || s.state == StateReading
}

// State returns the lifecycle state. Never blocks.
func (s *Store) State() State {
	return s.state
}

// Err returns the latched diagnostic, KindNone if healthy. Never blocks.
func (s *Store) Err() ErrorKind {
	return s.errKind
}

// Current returns the name of the open session, empty when idle. Never
// blocks.
func (s *Store) Current() string {
	return s.current
}

func recordingPath(name string) string {
	return RootDir + "/" + name + Suffix
}

// recordingName recovers a recording name from a directory entry path.
// The path must start with the recording root and end in the recording
// suffix, compared case-insensitively the way the original SD library did.
func recordingName(path string) (string, bool) {
	rel, ok := strings.CutPrefix(path, RootDir+"/")
	if !ok {
		return "", false
	}
	if len(rel) < len(Suffix) || !strings.EqualFold(rel[len(rel)-len(Suffix):], Suffix) {
		return "", false
	}
	return rel[:len(rel)-len(Suffix)], true
}

// Package service wires the configuration, the medium filesystem, the bus
// lock, and the store together, and exposes the producer/consumer flows
// the commands and the HTTP server drive.
package service

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/ecglab/recstore/internal/blockfs"
	"github.com/ecglab/recstore/internal/buslock"
	"github.com/ecglab/recstore/internal/config"
	"github.com/ecglab/recstore/internal/store"
)

// Service drives the recording store on behalf of the application.
type Service struct {
	cfg *config.Config
	st  *store.Store
}

// Summary is the store status snapshot returned by Status.
type Summary struct {
	State      store.State     `json:"state" yaml:"state"`
	Error      store.ErrorKind `json:"error" yaml:"error"`
	Current    string          `json:"current,omitempty" yaml:"current,omitempty"`
	Recordings int             `json:"recordings" yaml:"recordings"`
	TotalBytes int64           `json:"total_bytes" yaml:"total_bytes"`
}

// New builds the service from configuration: the mount directory is
// created if needed, the medium filesystem is rooted there, and the store
// is constructed with a fresh bus lock.
func New(cfg *config.Config) (*Service, error) {
	if err := os.MkdirAll(cfg.Storage.Mount, 0o755); err != nil {
		return nil, fmt.Errorf("preparing mount directory %s: %w", cfg.Storage.Mount, err)
	}

	fs := blockfs.NewAtMount(cfg.Storage.Mount)
	st := store.New(fs, buslock.New())

	return &Service{cfg: cfg, st: st}, nil
}

// NewWithStore builds the service around an existing store. Used by tests
// and by callers that manage the medium themselves.
func NewWithStore(cfg *config.Config, st *store.Store) *Service {
	return &Service{cfg: cfg, st: st}
}

// Store exposes the underlying store for status accessors.
func (s *Service) Store() *store.Store {
	return s.st
}

// Record creates a new recording and appends one frame per input line.
// Each line is a comma-separated list of at most the configured number of
// float samples. Blank lines are skipped. Returns the recording name and
// the number of frames written.
func (s *Service) Record(r io.Reader) (string, int, error) {
	name, ok := s.st.Begin()
	if !ok {
		return "", 0, s.storeErr("cannot start recording")
	}

	frames := 0
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		vals, err := parseFrame(line, s.cfg.Record.MaxFrameLen)
		if err != nil {
			s.st.End()
			return name, frames, fmt.Errorf("line %d: %w", frames+1, err)
		}

		if !s.st.Append(vals) {
			s.st.End()
			return name, frames, s.storeErr("cannot append frame")
		}
		frames++
	}
	if err := scanner.Err(); err != nil {
		s.st.End()
		return name, frames, fmt.Errorf("reading input: %w", err)
	}

	if !s.st.End() {
		return name, frames, s.storeErr("cannot close recording")
	}

	slog.Info("recording finished", "name", name, "frames", frames)

	return name, frames, nil
}

// Dump reads the named recording back and writes one comma-separated line
// per frame. Returns the number of frames read.
func (s *Service) Dump(name string, w io.Writer) (int, error) {
	if !s.st.Open(name) {
		return 0, s.storeErr(fmt.Sprintf("cannot open recording %q", name))
	}

	// One slot larger than the longest legal frame, so the store never
	// reports an insufficient buffer.
	buf := make([]float32, 256)

	frames := 0
	for {
		n := s.st.Next(buf)
		if n <= 0 {
			break
		}

		if err := writeFrame(w, buf[:n]); err != nil {
			s.st.End()
			return frames, fmt.Errorf("writing output: %w", err)
		}
		frames++
	}

	if s.st.State() == store.StateError {
		return frames, s.storeErr(fmt.Sprintf("recording %q is damaged", name))
	}

	if !s.st.End() {
		return frames, s.storeErr("cannot close recording")
	}

	return frames, nil
}

// List enumerates the recordings on the medium.
func (s *Service) List() ([]store.Entry, error) {
	entries := s.st.List()
	if s.st.State() == store.StateError {
		return nil, s.storeErr("cannot list recordings")
	}
	return entries, nil
}

// Erase removes the named recording. The bool reports whether it existed.
func (s *Service) Erase(name string) (bool, error) {
	removed := s.st.Erase(name)
	if s.st.State() == store.StateError {
		return false, s.storeErr(fmt.Sprintf("cannot erase recording %q", name))
	}
	return removed, nil
}

// Reset recovers the store from a latched error.
func (s *Service) Reset() error {
	if s.st.State() != store.StateError {
		return nil
	}
	if !s.st.Reset() {
		return s.storeErr("reset failed")
	}
	return nil
}

// Status reports the store state plus an enumeration summary. The
// enumeration is skipped while a session is open or an error is latched.
func (s *Service) Status() Summary {
	sum := Summary{
		State:   s.st.State(),
		Error:   s.st.Err(),
		Current: s.st.Current(),
	}

	if s.st.State() == store.StateIdle {
		for _, e := range s.st.List() {
			sum.Recordings++
			sum.TotalBytes += e.Size
		}
	}

	return sum
}

// storeErr converts the latched store diagnostic into an error value for
// the application layers.
func (s *Service) storeErr(msg string) error {
	if kind := s.st.Err(); kind != store.KindNone {
		return fmt.Errorf("%s: store error %s (state %s)", msg, kind, s.st.State())
	}
	return fmt.Errorf("%s (state %s)", msg, s.st.State())
}

// parseFrame parses one comma-separated line of float samples.
func parseFrame(line string, maxLen int) ([]float32, error) {
	fields := strings.Split(line, ",")
	if len(fields) > maxLen {
		return nil, fmt.Errorf("frame has %d samples, limit is %d", len(fields), maxLen)
	}

	vals := make([]float32, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 32)
		if err != nil {
			return nil, fmt.Errorf("bad sample %q: %w", f, err)
		}
		vals = append(vals, float32(v))
	}

	return vals, nil
}

// writeFrame writes one frame as a comma-separated line.
func writeFrame(w io.Writer, vals []float32) error {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.FormatFloat(float64(v), 'g', -1, 32)
	}
	_, err := fmt.Fprintln(w, strings.Join(parts, ","))
	return err
}

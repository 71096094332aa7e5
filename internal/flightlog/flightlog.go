package flightlog

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Append-only CSV flight log.
//
// One file per flight, numbered so a prior flight's data is never touched.
// Rows are buffered in memory and pushed to disk in batches; Close flushes
// whatever is left, so it must run before the file is abandoned.

// Header names every column; one comma-separated row per sample follows.
const Header = "time_ms,pressure_raw,temp_raw,accel_x,accel_y,accel_z"

// Buffered bytes before the log hits the disk. Batching keeps per-sample
// latency flat instead of paying a write+sync per row.
const flushThreshold = 4096

var (
	// ErrDirUnavailable means the data directory could not be created or probed.
	ErrDirUnavailable = errors.New("flightlog: data directory unavailable")
	// ErrCreateFailed means the numbered log file could not be opened.
	ErrCreateFailed = errors.New("flightlog: log file create failed")
)

// Record is one sample row. Field order matches Header.
type Record struct {
	ElapsedMs   int32
	PressureRaw uint32
	TempRaw     int32
	AccelX      int16
	AccelY      int16
	AccelZ      int16
}

type Writer struct {
	f    *os.File
	buf  bytes.Buffer
	name string
}

// Prepare creates dir if needed (already existing is fine) and opens the
// first unused flight_NNN.csv in it, scanning from 001. The header row is on
// disk before Prepare returns.
func Prepare(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDirUnavailable, err)
	}

	var path string
	for n := 1; ; n++ {
		path = filepath.Join(dir, fmt.Sprintf("flight_%03d.csv", n))
		_, err := os.Stat(path)
		if errors.Is(err, os.ErrNotExist) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: stat %s: %v", ErrDirUnavailable, path, err)
		}
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCreateFailed, err)
	}

	w := &Writer{f: f, name: path}
	w.buf.WriteString(Header)
	w.buf.WriteByte('\n')
	if err := w.flush(); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %v", ErrCreateFailed, err)
	}
	return w, nil
}

// Name returns the path of the open log file.
func (w *Writer) Name() string { return w.name }

// Append buffers one row, flushing to disk when the batch threshold is hit.
func (w *Writer) Append(r Record) error {
	fmt.Fprintf(&w.buf, "%d,%d,%d,%d,%d,%d\n",
		r.ElapsedMs, r.PressureRaw, r.TempRaw, r.AccelX, r.AccelY, r.AccelZ)
	if w.buf.Len() >= flushThreshold {
		return w.flush()
	}
	return nil
}

// Close flushes the buffer tail and releases the file.
func (w *Writer) Close() error {
	if w == nil || w.f == nil {
		return nil
	}
	ferr := w.flush()
	cerr := w.f.Close()
	w.f = nil
	if ferr != nil {
		return ferr
	}
	return cerr
}

func (w *Writer) flush() error {
	if w.buf.Len() == 0 {
		return nil
	}
	if _, err := w.f.Write(w.buf.Bytes()); err != nil {
		return fmt.Errorf("flightlog: write failed: %w", err)
	}
	if err := w.f.Sync(); err != nil {
		return fmt.Errorf("flightlog: sync failed: %w", err)
	}
	w.buf.Reset()
	return nil
}

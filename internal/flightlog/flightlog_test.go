package flightlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPrepare_NumbersFromOne(t *testing.T) {
	dir := t.TempDir()

	w, err := Prepare(dir)
	if err != nil {
		t.Fatalf("Prepare() error: %v", err)
	}
	defer w.Close()

	if got := filepath.Base(w.Name()); got != "flight_001.csv" {
		t.Fatalf("name=%q want flight_001.csv", got)
	}
}

func TestPrepare_SkipsExistingFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"flight_001.csv", "flight_002.csv", "flight_003.csv", "flight_004.csv", "flight_005.csv"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("old\n"), 0o644); err != nil {
			t.Fatalf("WriteFile() error: %v", err)
		}
	}

	w, err := Prepare(dir)
	if err != nil {
		t.Fatalf("Prepare() error: %v", err)
	}
	defer w.Close()

	if got := filepath.Base(w.Name()); got != "flight_006.csv" {
		t.Fatalf("name=%q want flight_006.csv", got)
	}

	// Prior flights untouched.
	b, err := os.ReadFile(filepath.Join(dir, "flight_001.csv"))
	if err != nil || string(b) != "old\n" {
		t.Fatalf("flight_001.csv modified: %q err=%v", b, err)
	}
}

func TestPrepare_CreatesDirAndHeader(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "flight_data")

	w, err := Prepare(dir)
	if err != nil {
		t.Fatalf("Prepare() error: %v", err)
	}
	defer w.Close()

	b, err := os.ReadFile(w.Name())
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if string(b) != Header+"\n" {
		t.Fatalf("content=%q want header row", b)
	}
}

func TestPrepare_DirUnavailable(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}

	_, err := Prepare(filepath.Join(blocker, "sub"))
	if err == nil {
		t.Fatalf("expected error creating dir under a regular file")
	}
}

func TestAppend_BuffersUntilThreshold(t *testing.T) {
	dir := t.TempDir()
	w, err := Prepare(dir)
	if err != nil {
		t.Fatalf("Prepare() error: %v", err)
	}
	defer w.Close()

	if err := w.Append(Record{ElapsedMs: 10, PressureRaw: 405300, TempRaw: 400, AccelX: 1, AccelY: -2, AccelZ: 256}); err != nil {
		t.Fatalf("Append() error: %v", err)
	}

	// Row still in memory: on-disk content is the header alone.
	b, err := os.ReadFile(w.Name())
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if string(b) != Header+"\n" {
		t.Fatalf("content=%q want buffered row not yet on disk", b)
	}
}

func TestAppend_FlushesAtThreshold(t *testing.T) {
	dir := t.TempDir()
	w, err := Prepare(dir)
	if err != nil {
		t.Fatalf("Prepare() error: %v", err)
	}
	defer w.Close()

	// Enough rows to cross the threshold at least once.
	for i := 0; i < 400; i++ {
		if err := w.Append(Record{ElapsedMs: int32(i * 10), PressureRaw: 405300, TempRaw: 400, AccelZ: 256}); err != nil {
			t.Fatalf("Append() error: %v", err)
		}
	}

	fi, err := os.Stat(w.Name())
	if err != nil {
		t.Fatalf("Stat() error: %v", err)
	}
	if fi.Size() < flushThreshold {
		t.Fatalf("size=%d want at least one %d-byte flush", fi.Size(), flushThreshold)
	}
}

func TestClose_FlushesTail(t *testing.T) {
	dir := t.TempDir()
	w, err := Prepare(dir)
	if err != nil {
		t.Fatalf("Prepare() error: %v", err)
	}

	rows := []Record{
		{ElapsedMs: 0, PressureRaw: 405300, TempRaw: 400, AccelZ: 256},
		{ElapsedMs: 10, PressureRaw: 405290, TempRaw: 399, AccelX: -1, AccelZ: 255},
	}
	for _, r := range rows {
		if err := w.Append(r); err != nil {
			t.Fatalf("Append() error: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	b, err := os.ReadFile(w.Name())
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(b), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines=%d want header + 2 rows:\n%s", len(lines), b)
	}
	if lines[0] != Header {
		t.Fatalf("header=%q", lines[0])
	}
	if lines[1] != "0,405300,400,0,0,256" {
		t.Fatalf("row1=%q", lines[1])
	}
	if lines[2] != "10,405290,399,-1,0,255" {
		t.Fatalf("row2=%q", lines[2])
	}
}

func TestClose_Idempotent(t *testing.T) {
	w, err := Prepare(t.TempDir())
	if err != nil {
		t.Fatalf("Prepare() error: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("first Close() error: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second Close() error: %v", err)
	}
}

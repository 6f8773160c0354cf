// (c) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package fragment

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// recordHeaderSize is the fixed 13-byte header preceding every record's
// fragment bytes: 8-byte received_at + 1-byte origin + 4-byte length,
// all little-endian (spec §6 "Persistent log file format"). No pack
// library matches this exact mandated wire shape — holiman/billy (also
// considered) stores records behind shelf/slot indirection designed for
// reusable freelists, not a flat append-only scan format with no
// in-file index, so the writer is hand-rolled on bufio/encoding/binary,
// the same primitives the teacher's own rawdb freezer table uses for
// its append-only segment files.
const recordHeaderSize = 8 + 1 + 4

// persistentWriter appends fragment records to an hourly file. It is
// owned exclusively by the single Process event loop goroutine (F); no
// synchronization is needed, matching the teacher's single-writer
// freezer table assumption.
type persistentWriter struct {
	dir  string
	file *os.File
	buf  *bufio.Writer
	hour time.Time // the wall-clock hour (UTC, truncated) this file covers
}

// openPersistentWriter opens (creating if needed) the file for the hour
// containing at, in append mode, creating dir if absent.
func openPersistentWriter(dir string, at time.Time) (*persistentWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &PersistentLogError{Op: "open", Dir: dir, Err: err}
	}
	hour := at.UTC().Truncate(time.Hour)
	path := filepath.Join(dir, fileNameForHour(hour))

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, &PersistentLogError{Op: "open", Dir: dir, Err: err}
	}
	return &persistentWriter{
		dir:  dir,
		file: f,
		buf:  bufio.NewWriter(f),
		hour: hour,
	}, nil
}

// fileNameForHour renders the "YYYY-MM-DD_HH.log" name for an hour
// boundary already truncated to UTC (spec §6 "File naming").
func fileNameForHour(hour time.Time) string {
	return fmt.Sprintf("%04d-%02d-%02d_%02d.log", hour.Year(), hour.Month(), hour.Day(), hour.Hour())
}

// write appends one record. Flush policy is best-effort: writes go
// through a buffered writer with no per-record fsync, so durability is
// bounded by OS buffer flush (spec §4.2) until the buffer is explicitly
// flushed (on rotation or close).
func (w *persistentWriter) write(receivedAt time.Time, origin Origin, bytes []byte) error {
	var header [recordHeaderSize]byte
	binary.LittleEndian.PutUint64(header[0:8], uint64(receivedAt.Unix()))
	header[8] = byte(origin)
	binary.LittleEndian.PutUint32(header[9:13], uint32(len(bytes)))

	if _, err := w.buf.Write(header[:]); err != nil {
		return &PersistentLogError{Op: "write", Dir: w.dir, Err: err}
	}
	if _, err := w.buf.Write(bytes); err != nil {
		return &PersistentLogError{Op: "write", Dir: w.dir, Err: err}
	}
	return nil
}

// close flushes and closes the underlying file. Rotation and final
// shutdown both go through this path (spec §5 "exactly one file handle
// open... rotation closes before opening").
func (w *persistentWriter) close() error {
	if err := w.buf.Flush(); err != nil {
		_ = w.file.Close()
		return &PersistentLogError{Op: "sync", Dir: w.dir, Err: err}
	}
	if err := w.file.Close(); err != nil {
		return &PersistentLogError{Op: "sync", Dir: w.dir, Err: err}
	}
	return nil
}

// dueForRotation reports whether at has crossed into a new wall-clock
// hour since this file was opened.
func (w *persistentWriter) dueForRotation(at time.Time) bool {
	return at.UTC().Truncate(time.Hour).After(w.hour)
}

// nextRotation returns the instant the current file becomes due for
// rotation: the start of the following UTC hour.
func (w *persistentWriter) nextRotation() time.Time {
	return w.hour.Add(time.Hour)
}

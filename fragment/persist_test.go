// (c) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package fragment

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPersistentWriterFileNaming(t *testing.T) {
	require := require.New(t)
	dir := t.TempDir()
	at := time.Date(2026, time.March, 5, 14, 30, 0, 0, time.UTC)

	w, err := openPersistentWriter(dir, at)
	require.NoError(err)
	defer w.close()

	require.FileExists(filepath.Join(dir, "2026-03-05_14.log"))
}

func TestPersistentWriterRoundTrip(t *testing.T) {
	require := require.New(t)
	dir := t.TempDir()
	at := time.Date(2026, time.March, 5, 14, 0, 0, 0, time.UTC)

	w, err := openPersistentWriter(dir, at)
	require.NoError(err)

	received := time.Date(2026, time.March, 5, 14, 5, 0, 0, time.UTC)
	require.NoError(w.write(received, OriginNetwork, []byte("payload-bytes")))
	require.NoError(w.close())

	f, err := os.Open(filepath.Join(dir, "2026-03-05_14.log"))
	require.NoError(err)
	defer f.Close()

	r := bufio.NewReader(f)
	var header [recordHeaderSize]byte
	_, err = io.ReadFull(r, header[:])
	require.NoError(err)

	gotReceivedAt := int64(binary.LittleEndian.Uint64(header[0:8]))
	require.Equal(received.Unix(), gotReceivedAt)
	require.Equal(byte(OriginNetwork), header[8])

	length := binary.LittleEndian.Uint32(header[9:13])
	payload := make([]byte, length)
	_, err = io.ReadFull(r, payload)
	require.NoError(err)
	require.Equal("payload-bytes", string(payload))
}

func TestPersistentWriterDueForRotation(t *testing.T) {
	require := require.New(t)
	dir := t.TempDir()
	at := time.Date(2026, time.March, 5, 14, 0, 0, 0, time.UTC)
	w, err := openPersistentWriter(dir, at)
	require.NoError(err)
	defer w.close()

	require.False(w.dueForRotation(at.Add(59 * time.Minute)))
	require.True(w.dueForRotation(at.Add(61 * time.Minute)))
	require.Equal(at.Add(time.Hour), w.nextRotation())
}

func TestPersistentWriterCreatesDirectory(t *testing.T) {
	require := require.New(t)
	dir := filepath.Join(t.TempDir(), "nested", "logs")
	w, err := openPersistentWriter(dir, time.Now())
	require.NoError(err)
	defer w.close()
	require.DirExists(dir)
}

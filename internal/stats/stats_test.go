package stats

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFileRecorderHeaderOnce writes the header only into an empty file.
func TestFileRecorderHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Log.txt")
	rec := NewFileRecorder(path)

	require.NoError(t, rec.Append(Record{ArraySize: 4, Workers: 2, CompareDelayMs: 0, Comparisons: 6, ElapsedMs: 1}))
	require.NoError(t, rec.Append(Record{ArraySize: 8, Workers: 3, CompareDelayMs: 1, Comparisons: 28, ElapsedMs: 12}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "ArraySize,TaskCount,compareTimeMs,comparisonCount,actualTimeMs", lines[0])
	assert.Equal(t, "4,2,0,6,1", lines[1])
	assert.Equal(t, "8,3,1,28,12", lines[2])
}

// TestFileRecorderExistingFile appends below rows written by earlier runs.
func TestFileRecorderExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.csv")
	require.NoError(t, NewFileRecorder(path).Append(Record{ArraySize: 1}))

	// A fresh recorder, as in a later invocation, must not repeat the header.
	require.NoError(t, NewFileRecorder(path).Append(Record{ArraySize: 2}))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := ReadRecords(f)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 1, records[0].ArraySize)
	assert.Equal(t, 2, records[1].ArraySize)
}

// TestFileRecorderDefaultPath falls back to Log.txt.
func TestFileRecorderDefaultPath(t *testing.T) {
	assert.Equal(t, DefaultFile, NewFileRecorder("").Path())
}

// TestFileRecorderUnwritable reports open failures.
func TestFileRecorderUnwritable(t *testing.T) {
	rec := NewFileRecorder(filepath.Join(t.TempDir(), "missing", "Log.txt"))
	assert.Error(t, rec.Append(Record{}))
}

// TestFileRecorderWriteFailure reports the failed write, not the close that
// follows it.
func TestFileRecorderWriteFailure(t *testing.T) {
	if _, err := os.Stat("/dev/full"); err != nil {
		t.Skip("no /dev/full on this platform")
	}
	err := NewFileRecorder("/dev/full").Append(Record{ArraySize: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write stats log")
}

// TestFileRecorderManyAppends releases the file after every append.
func TestFileRecorderManyAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Log.txt")
	rec := NewFileRecorder(path)
	for i := 1; i <= 200; i++ {
		require.NoError(t, rec.Append(Record{ArraySize: i}))
	}

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := ReadRecords(f)
	require.NoError(t, err)
	require.Len(t, records, 200)
	assert.Equal(t, 200, records[199].ArraySize)
}

// TestFileRecorderConcurrent keeps rows intact under concurrent appends.
func TestFileRecorderConcurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Log.txt")
	rec := NewFileRecorder(path)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			assert.NoError(t, rec.Append(Record{ArraySize: n}))
		}(i)
	}
	wg.Wait()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := ReadRecords(f)
	require.NoError(t, err)
	assert.Len(t, records, 20)
}

// TestReadRecords covers empty and malformed logs.
func TestReadRecords(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		records, err := ReadRecords(strings.NewReader(""))
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("no header", func(t *testing.T) {
		_, err := ReadRecords(strings.NewReader("4,2,0,6,1\n"))
		assert.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("bad number", func(t *testing.T) {
		in := strings.Join(Header, ",") + "\n4,2,x,6,1\n"
		_, err := ReadRecords(strings.NewReader(in))
		assert.ErrorIs(t, err, ErrMalformed)
	})
}

// TestMemoryRecorder returns copies of stored records.
func TestMemoryRecorder(t *testing.T) {
	m := NewMemoryRecorder()
	require.NoError(t, m.Append(Record{ArraySize: 3, Comparisons: 3}))

	got := m.Records()
	require.Len(t, got, 1)
	got[0].ArraySize = 99
	assert.Equal(t, 3, m.Records()[0].ArraySize)
}

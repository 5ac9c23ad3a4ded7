package stats

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
)

// DefaultFile is the statistics log written when no path is configured.
const DefaultFile = "Log.txt"

// Header is the column row written at the top of an empty log.
var Header = []string{"ArraySize", "TaskCount", "compareTimeMs", "comparisonCount", "actualTimeMs"}

// ErrMalformed is returned when a log row does not match Header.
var ErrMalformed = errors.New("stats: malformed record")

// Record is one sort invocation.
type Record struct {
	ArraySize      int   // Number of sorted elements
	Workers        int   // Worker processes in the pool
	CompareDelayMs int   // Artificial compare cost per pair
	Comparisons    int   // Pairs processed over all rounds
	ElapsedMs      int64 // Wall-clock sort time
}

func (r Record) row() []string {
	return []string{
		strconv.Itoa(r.ArraySize),
		strconv.Itoa(r.Workers),
		strconv.Itoa(r.CompareDelayMs),
		strconv.Itoa(r.Comparisons),
		strconv.FormatInt(r.ElapsedMs, 10),
	}
}

// Recorder persists sort statistics.
// Implementations must be safe for concurrent use.
type Recorder interface {
	// Append adds one record.
	Append(r Record) error
}

// FileRecorder appends records as CSV rows to a file, writing Header first
// when the file is empty.
type FileRecorder struct {
	mu   sync.Mutex // Serialises appends from this process
	path string     // Log file location
}

// NewFileRecorder creates a recorder for path.
func NewFileRecorder(path string) *FileRecorder {
	if path == "" {
		path = DefaultFile
	}
	return &FileRecorder{path: path}
}

// Path returns the log file location.
func (f *FileRecorder) Path() string {
	return f.path
}

// Append writes r as one row, creating the file if needed.
func (f *FileRecorder) Append(r Record) (err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	file, err := os.OpenFile(f.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open stats log: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close stats log: %w", cerr)
		}
	}()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("stat stats log: %w", err)
	}

	w := csv.NewWriter(file)
	if info.Size() == 0 {
		if err := w.Write(Header); err != nil {
			return err
		}
	}
	if err := w.Write(r.row()); err != nil {
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write stats log: %w", err)
	}
	return nil
}

// ReadRecords parses a statistics log written by FileRecorder.
func ReadRecords(in io.Reader) ([]Record, error) {
	rows, err := csv.NewReader(in).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	if len(rows[0]) != len(Header) || rows[0][0] != Header[0] {
		return nil, fmt.Errorf("%w: missing header", ErrMalformed)
	}

	records := make([]Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rec, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseRow(row []string) (Record, error) {
	if len(row) != len(Header) {
		return Record{}, fmt.Errorf("%w: %d fields", ErrMalformed, len(row))
	}
	var ints [4]int
	for i := range ints {
		v, err := strconv.Atoi(row[i])
		if err != nil {
			return Record{}, fmt.Errorf("%w: %s: %v", ErrMalformed, Header[i], err)
		}
		ints[i] = v
	}
	elapsed, err := strconv.ParseInt(row[4], 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("%w: %s: %v", ErrMalformed, Header[4], err)
	}
	return Record{
		ArraySize:      ints[0],
		Workers:        ints[1],
		CompareDelayMs: ints[2],
		Comparisons:    ints[3],
		ElapsedMs:      elapsed,
	}, nil
}

// MemoryRecorder keeps records in memory.
type MemoryRecorder struct {
	mu      sync.RWMutex
	records []Record
}

// NewMemoryRecorder creates an empty in-memory recorder.
func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{}
}

// Append stores r.
func (m *MemoryRecorder) Append(r Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, r)
	return nil
}

// Records returns a copy of everything appended so far.
func (m *MemoryRecorder) Records() []Record {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Record, len(m.records))
	copy(out, m.records)
	return out
}

var (
	_ Recorder = (*FileRecorder)(nil)
	_ Recorder = (*MemoryRecorder)(nil)
)

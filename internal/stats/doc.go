// Package stats persists per-invocation sort statistics: array size, worker
// count, compare delay, comparison count and wall-clock time.
//
// # Log Format
//
// FileRecorder appends one CSV row per invocation and writes the header row
// only when the file is currently empty, so repeated runs accumulate in one
// table:
//
//	ArraySize,TaskCount,compareTimeMs,comparisonCount,actualTimeMs
//	1000,7,1,499500,71940
//	1000,3,1,499500,167556
//
// The file is append-only; nothing is ever rewritten.
//
// # Implementations
//
// FileRecorder: the persisted log used by the coordinator binary.
//
// MemoryRecorder: keeps records in memory for tests.
package stats

package cache

import (
	"sync"

	"github.com/fandial/callboard/internal/types"
)

// maxRecords bounds the in-memory call log; oldest entries are dropped
const maxRecords = 100

// CallLog stores recently completed calls in memory. Session scoped, nothing
// survives a restart.
type CallLog struct {
	records []types.CallRecord
	mu      sync.RWMutex
}

// NewCallLog creates an empty call log
func NewCallLog() *CallLog {
	return &CallLog{
		records: make([]types.CallRecord, 0, maxRecords),
	}
}

// Add appends a completed call, evicting the oldest entry when full
func (l *CallLog) Add(record types.CallRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.records) >= maxRecords {
		l.records = l.records[1:]
	}
	l.records = append(l.records, record)
}

// Recent returns up to n records, newest first
func (l *CallLog) Recent(n int) []types.CallRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if n > len(l.records) {
		n = len(l.records)
	}

	out := make([]types.CallRecord, 0, n)
	for i := len(l.records) - 1; i >= len(l.records)-n; i-- {
		out = append(out, l.records[i])
	}
	return out
}

// Size returns the current number of records
func (l *CallLog) Size() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

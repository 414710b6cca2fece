package cache

import (
	"fmt"
	"testing"

	"github.com/fandial/callboard/internal/types"
)

func TestCallLogAddAndRecent(t *testing.T) {
	log := NewCallLog()

	if log.Size() != 0 {
		t.Errorf("expected empty log, got %d", log.Size())
	}

	for i := 0; i < 5; i++ {
		log.Add(types.CallRecord{CallID: fmt.Sprintf("call-%d", i)})
	}

	if log.Size() != 5 {
		t.Errorf("expected 5 records, got %d", log.Size())
	}

	recent := log.Recent(3)
	if len(recent) != 3 {
		t.Fatalf("expected 3 records, got %d", len(recent))
	}

	// Newest first
	if recent[0].CallID != "call-4" || recent[2].CallID != "call-2" {
		t.Errorf("unexpected order: %s ... %s", recent[0].CallID, recent[2].CallID)
	}
}

func TestCallLogRecentMoreThanStored(t *testing.T) {
	log := NewCallLog()
	log.Add(types.CallRecord{CallID: "call-0"})

	recent := log.Recent(10)
	if len(recent) != 1 {
		t.Errorf("expected 1 record, got %d", len(recent))
	}
}

func TestCallLogEvictsOldest(t *testing.T) {
	log := NewCallLog()

	for i := 0; i < maxRecords+10; i++ {
		log.Add(types.CallRecord{CallID: fmt.Sprintf("call-%d", i)})
	}

	if log.Size() != maxRecords {
		t.Errorf("expected %d records after eviction, got %d", maxRecords, log.Size())
	}

	recent := log.Recent(1)
	if recent[0].CallID != fmt.Sprintf("call-%d", maxRecords+9) {
		t.Errorf("expected newest record to survive, got %s", recent[0].CallID)
	}
}

package dashboard

import (
	"testing"

	"github.com/fandial/callboard/internal/types"
)

func TestNewStateDefaults(t *testing.T) {
	s := NewState()

	if s.RunState() != types.RunStateStopped {
		t.Errorf("expected initial run state stopped, got %s", s.RunState())
	}
	if s.CallStats() != (types.CallStats{}) {
		t.Errorf("expected zeroed call stats, got %+v", s.CallStats())
	}
	if s.Revenue() != (types.RevenueData{}) {
		t.Errorf("expected zeroed revenue, got %+v", s.Revenue())
	}
}

func TestApplyReplacesTupleWholesale(t *testing.T) {
	s := NewState()

	stats := types.CallStats{Success: 3, Rejected: 1, Voicemail: 2}
	rev := types.RevenueData{DailyRevenue: 75, SuccessRate: 50, TotalCalls: 4}
	s.Apply(stats, rev)

	snap := s.Snapshot()
	if snap.CallStats != stats {
		t.Errorf("expected call stats %+v, got %+v", stats, snap.CallStats)
	}
	if snap.Revenue != rev {
		t.Errorf("expected revenue %+v, got %+v", rev, snap.Revenue)
	}
	if snap.Type != "snapshot" {
		t.Errorf("expected snapshot type, got %q", snap.Type)
	}
	if snap.Timestamp.IsZero() {
		t.Error("expected snapshot timestamp to be set after apply")
	}
}

func TestSetRunState(t *testing.T) {
	s := NewState()

	s.SetRunState(types.RunStateRunning)
	if s.RunState() != types.RunStateRunning {
		t.Errorf("expected running, got %s", s.RunState())
	}

	if snap := s.Snapshot(); snap.RunState != types.RunStateRunning {
		t.Errorf("expected snapshot run state running, got %s", snap.RunState)
	}
}

func TestReset(t *testing.T) {
	s := NewState()
	s.Apply(types.CallStats{Success: 1}, types.RevenueData{TotalCalls: 1})

	s.Reset()

	if s.CallStats() != (types.CallStats{}) {
		t.Errorf("expected zeroed stats after reset, got %+v", s.CallStats())
	}
	if s.Revenue() != (types.RevenueData{}) {
		t.Errorf("expected zeroed revenue after reset, got %+v", s.Revenue())
	}
}

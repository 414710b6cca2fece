package alerts

import (
	"fmt"

	"github.com/fandial/callboard/internal/types"
)

const (
	// minCallsForRateAlert avoids firing on the noisy first few ticks
	minCallsForRateAlert = 10
	lowSuccessRate       = 20.0
	droughtCalls         = 20
)

// Check evaluates alert rules against a snapshot and returns any that fire
func Check(stats types.CallStats, rev types.RevenueData) []types.Alert {
	var alerts []types.Alert

	if rev.TotalCalls >= minCallsForRateAlert && rev.SuccessRate < lowSuccessRate {
		alerts = append(alerts, types.Alert{
			Rule:     "success_rate_low",
			Severity: types.SeverityWarning,
			Message:  fmt.Sprintf("success rate %.1f%% after %d calls", rev.SuccessRate, rev.TotalCalls),
		})
	}

	if rev.TotalCalls >= droughtCalls && stats.Success == 0 {
		alerts = append(alerts, types.Alert{
			Rule:     "no_sales",
			Severity: types.SeverityCritical,
			Message:  fmt.Sprintf("no successful sales in %d calls", rev.TotalCalls),
		})
	}

	if stats.Rejected > 0 && stats.Success == 0 && stats.Rejected >= 10 {
		alerts = append(alerts, types.Alert{
			Rule:     "rejections_high",
			Severity: types.SeverityWarning,
			Message:  fmt.Sprintf("%d rejections without a sale", stats.Rejected),
		})
	}

	return alerts
}

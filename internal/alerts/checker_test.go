package alerts

import (
	"testing"

	"github.com/fandial/callboard/internal/types"
)

func TestCheck(t *testing.T) {
	tests := []struct {
		name      string
		stats     types.CallStats
		rev       types.RevenueData
		wantRules []string
	}{
		{
			name:      "quiet session raises nothing",
			stats:     types.CallStats{Success: 2},
			rev:       types.RevenueData{SuccessRate: 40, TotalCalls: 5},
			wantRules: nil,
		},
		{
			name:      "low rate ignored before enough calls",
			stats:     types.CallStats{Success: 1},
			rev:       types.RevenueData{SuccessRate: 5, TotalCalls: 5},
			wantRules: nil,
		},
		{
			name:      "low success rate",
			stats:     types.CallStats{Success: 1, Rejected: 3},
			rev:       types.RevenueData{SuccessRate: 10, TotalCalls: 12},
			wantRules: []string{"success_rate_low"},
		},
		{
			name:      "sales drought",
			stats:     types.CallStats{Success: 0, Rejected: 5},
			rev:       types.RevenueData{SuccessRate: 0, TotalCalls: 25},
			wantRules: []string{"success_rate_low", "no_sales"},
		},
		{
			name:      "heavy rejections without a sale",
			stats:     types.CallStats{Success: 0, Rejected: 12},
			rev:       types.RevenueData{SuccessRate: 30, TotalCalls: 15},
			wantRules: []string{"rejections_high"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alerts := Check(tt.stats, tt.rev)

			if len(alerts) != len(tt.wantRules) {
				t.Fatalf("expected %d alerts, got %d: %+v", len(tt.wantRules), len(alerts), alerts)
			}
			for i, rule := range tt.wantRules {
				if alerts[i].Rule != rule {
					t.Errorf("alert %d: expected rule %s, got %s", i, rule, alerts[i].Rule)
				}
			}
		})
	}
}

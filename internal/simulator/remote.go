package simulator

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/fandial/callboard/internal/metrics"
	"github.com/fandial/callboard/internal/types"
	"github.com/rs/zerolog"
)

// remoteTimeout bounds every stats API call
const remoteTimeout = 10 * time.Second

// Remote fetches call-stats and revenue snapshots from the stats API.
// Any fetch failure degrades to a zeroed snapshot instead of surfacing an
// error; the polling loop must stay alive regardless of backend health.
type Remote struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewRemote creates a remote source pointing at the given stats API base URL
func NewRemote(baseURL string, logger zerolog.Logger) *Remote {
	return &Remote{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: remoteTimeout,
		},
		logger: logger.With().Str("component", "remote_source").Logger(),
	}
}

// Sample fetches the current stats and revenue from the backend.
// The previous snapshot is ignored; the backend owns the running totals.
func (r *Remote) Sample(_ types.CallStats, _ types.RevenueData) (types.CallStats, types.RevenueData) {
	var stats types.CallStats
	if err := r.fetch("/api/stats/calls", &stats); err != nil {
		r.logger.Warn().Err(err).Msg("call stats fetch failed, using zeroed snapshot")
		metrics.Get().RecordSourceFailure()
		return types.CallStats{}, types.RevenueData{}
	}

	var rev types.RevenueData
	if err := r.fetch("/api/stats/revenue", &rev); err != nil {
		r.logger.Warn().Err(err).Msg("revenue fetch failed, using zeroed snapshot")
		metrics.Get().RecordSourceFailure()
		return types.CallStats{}, types.RevenueData{}
	}

	return stats, rev
}

// fetch performs a GET against the stats API and decodes the JSON body
func (r *Remote) fetch(path string, out interface{}) error {
	url := r.baseURL + path
	resp, err := r.httpClient.Get(url)
	if err != nil {
		return fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s returned status %d", url, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", url, err)
	}
	return nil
}

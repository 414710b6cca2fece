package simulator

import (
	"math/rand"
	"sync"
	"time"

	"github.com/fandial/callboard/internal/types"
)

// TicketPrice is the revenue credited per successful sale
const TicketPrice = 25.0

// Source produces the next call-stats and revenue snapshot from the previous one
type Source interface {
	Sample(prev types.CallStats, prevRev types.RevenueData) (types.CallStats, types.RevenueData)
}

// Rand is the subset of math/rand used by the simulation, injectable for tests
type Rand interface {
	Intn(n int) int
}

// Sim generates call outcomes with bounded random increments per tick
type Sim struct {
	rng Rand
	mu  sync.Mutex
}

// NewSim creates a simulation source seeded from the current time
func NewSim() *Sim {
	return &Sim{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// NewSimWithRand creates a simulation source with the given RNG
func NewSimWithRand(rng Rand) *Sim {
	return &Sim{rng: rng}
}

// Sample rolls one tick of simulated outcomes on top of the previous snapshot.
//
// Outcome counters take independent bounded increments while totalCalls always
// advances by exactly one call batch per tick. The cadence mismatch is kept on
// purpose to stay compatible with what dashboards already display.
func (s *Sim) Sample(prev types.CallStats, prevRev types.RevenueData) (types.CallStats, types.RevenueData) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := types.CallStats{
		Success:   prev.Success + s.rng.Intn(3),
		Rejected:  prev.Rejected + s.rng.Intn(2),
		Voicemail: prev.Voicemail + s.rng.Intn(2),
		Forwarded: prev.Forwarded,
	}

	newSuccesses := s.rng.Intn(3)
	rev := types.RevenueData{
		DailyRevenue: prevRev.DailyRevenue + float64(newSuccesses)*TicketPrice,
		SuccessRate:  nextSuccessRate(prevRev.SuccessRate, prevRev.TotalCalls, newSuccesses),
		TotalCalls:   prevRev.TotalCalls + 1,
	}

	return stats, rev
}

// nextSuccessRate folds the successes of one tick into the running weighted average
func nextSuccessRate(prevRate float64, prevTotal, newSuccesses int) float64 {
	rate := (prevRate*float64(prevTotal) + float64(newSuccesses)) / float64(prevTotal+1)
	if rate < 0 {
		return 0
	}
	if rate > 100 {
		return 100
	}
	return rate
}

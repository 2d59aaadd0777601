package postgres

import (
	"context"
	"math"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	// admissionTolerance is the fraction of the pool that may be in use
	// before new work is shed.
	admissionTolerance = 0.8

	admissionRefreshInterval = 5 * time.Second
)

// poolStats reports the acquired and maximum connection counts of a pool.
// It exists so the gate can be tested without a live pool.
type poolStats func() (acquired, max int32)

// AdmissionGate sheds incoming work when the connection pool is close to
// saturation. Utilization is sampled on a fixed interval rather than per
// request, so a burst can briefly overshoot the tolerance; the pool itself
// still bounds the damage.
type AdmissionGate struct {
	stats       poolStats
	utilization atomic.Uint64
}

func NewAdmissionGate(pool *pgxpool.Pool) *AdmissionGate {
	return newAdmissionGate(func() (int32, int32) {
		stat := pool.Stat()
		return stat.AcquiredConns(), stat.MaxConns()
	})
}

func newAdmissionGate(stats poolStats) *AdmissionGate {
	g := &AdmissionGate{stats: stats}
	g.refresh()
	return g
}

// Run refreshes the sampled utilization until ctx is cancelled.
func (g *AdmissionGate) Run(ctx context.Context) {
	ticker := time.NewTicker(admissionRefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.refresh()
		}
	}
}

// Allow reports whether new work should be admitted.
func (g *AdmissionGate) Allow() bool {
	return g.Utilization() < admissionTolerance
}

// Utilization returns the last sampled fraction of the pool in use.
func (g *AdmissionGate) Utilization() float64 {
	return math.Float64frombits(g.utilization.Load())
}

func (g *AdmissionGate) refresh() {
	acquired, max := g.stats()

	var utilization float64
	if max > 0 {
		utilization = float64(acquired) / float64(max)
	}
	g.utilization.Store(math.Float64bits(utilization))
}

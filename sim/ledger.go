// The decoy cost ledger: the authoritative, append-only record of decoy
// deployments and cumulative cost for one defending side.

package sim

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// DeploymentRecord is one accepted decoy deployment. Immutable once created;
// owned by the Ledger for the simulation's lifetime.
type DeploymentRecord struct {
	DecoyID        string
	Kind           DecoyKind
	Cost           float64
	DeployedAtTick int64
	Position       Position
}

// Ledger tracks cumulative deployment cost against a hard ceiling.
// RequestDeploy is the sole mutation path: records are never removed or
// modified, and a request that would cross the ceiling is refused outright,
// never partially accepted or rolled back.
//
// The mutex makes check-then-append atomic with respect to multiple
// deployment attempts within one tick; callers that issue several requests in
// one tick apply them in plan-enumeration order (ascending cost), so replays
// are deterministic.
type Ledger struct {
	mu      sync.Mutex
	ceiling float64
	total   float64
	records []DeploymentRecord
}

// NewLedger creates an empty ledger with the given cost ceiling.
func NewLedger(ceiling float64) *Ledger {
	return &Ledger{ceiling: ceiling}
}

// RequestDeploy accepts the deployment iff total + cost stays at or under the
// ceiling. On acceptance it appends an immutable record, updates the total,
// and returns the record's decoy id. A refusal is a normal outcome, not an
// error: the caller simply cannot afford the plan.
func (l *Ledger) RequestDeploy(kind DecoyKind, cost float64, tick int64, pos Position) (decoyID string, accepted bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.total+cost > l.ceiling {
		logrus.Debugf("[tick %d] deploy %s refused: %.2f + %.2f exceeds ceiling %.2f",
			tick, kind, l.total, cost, l.ceiling)
		return "", false
	}
	decoyID = fmt.Sprintf("decoy-%d", len(l.records)+1)
	l.records = append(l.records, DeploymentRecord{
		DecoyID:        decoyID,
		Kind:           kind,
		Cost:           cost,
		DeployedAtTick: tick,
		Position:       pos,
	})
	l.total += cost
	logrus.Infof("[tick %d] deployed %s (%s, cost %.2f, total %.2f/%.2f)",
		tick, decoyID, kind, cost, l.total, l.ceiling)
	return decoyID, true
}

// Tally is a pure read of the cumulative cost and the count of accepted
// deployments. Count and cost are tracked separately: two plans of equal cost
// may use a different number of decoys.
func (l *Ledger) Tally() (totalCost float64, count int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.total, len(l.records)
}

// Remaining returns the budget still available under the ceiling.
func (l *Ledger) Remaining() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ceiling - l.total
}

// Records returns a copy of the accepted deployment records in acceptance
// order.
func (l *Ledger) Records() []DeploymentRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]DeploymentRecord, len(l.records))
	copy(out, l.records)
	return out
}

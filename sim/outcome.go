// Outcome evaluation: the verdict and score a finished engagement is judged
// by. Computed exactly once, at proximity kill or at the time bound.

package sim

import "fmt"

// survivalBaseScore separates primary results by more than any possible decoy
// count, so the fewer-decoys tie-break can never flip a hit/miss verdict.
const survivalBaseScore = 1000.0

// Outcome is the final engagement record. Immutable once computed.
type Outcome struct {
	Hit              bool
	TerminalDistance float64
	DecoysUsed       int     // count of accepted ledger records
	DecoyCost        float64 // total accepted cost (tracked separately from count)
	Score            float64 // defender score: survival primary, fewer decoys tie-break
}

func (o Outcome) String() string {
	verdict := "MISS"
	if o.Hit {
		verdict = "HIT"
	}
	return fmt.Sprintf("Outcome(%s, terminal %.2f, %d decoys / %.2f cost, score %.1f)",
		verdict, o.TerminalDistance, o.DecoysUsed, o.DecoyCost, o.Score)
}

// OutcomeEvaluator produces the final verdict from terminal geometry and the
// ledger tally. The kill radius comes from the scenario configuration.
type OutcomeEvaluator struct {
	killRadius float64
}

// NewOutcomeEvaluator creates an evaluator for the given kill radius.
func NewOutcomeEvaluator(killRadius float64) *OutcomeEvaluator {
	return &OutcomeEvaluator{killRadius: killRadius}
}

// Evaluate computes the outcome. Primary result: hit iff terminal distance is
// at or under the kill radius. Secondary tie-break: among equal primary
// results, each accepted deployment costs one point, so strictly fewer decoys
// used yields a strictly higher score. Every accepted ledger record counts,
// regardless of whether the decoy influenced the engagement.
func (e *OutcomeEvaluator) Evaluate(terminalDistance float64, ledger *Ledger) Outcome {
	totalCost, count := ledger.Tally()
	hit := terminalDistance <= e.killRadius
	score := -float64(count)
	if !hit {
		score += survivalBaseScore
	}
	return Outcome{
		Hit:              hit,
		TerminalDistance: terminalDistance,
		DecoysUsed:       count,
		DecoyCost:        totalCost,
		Score:            score,
	}
}

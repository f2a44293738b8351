// Tracks engagement-wide counters for final reporting.

package sim

import "fmt"

// Metrics aggregates statistics about one engagement run. Useful for
// comparing strategies across scenarios and for debugging behavior over time.
type Metrics struct {
	DetectionSweeps  int // detector activations delivered to both sides
	SteeringCommands int // commands emitted by the tracking controller
	TerminalCommands int // of which terminal-homing commands
	DecoysDeployed   int // accepted deploy commands emitted
	EvasionCues      int // evasion cues emitted by the defender
}

// Print displays aggregated metrics at the end of the engagement.
func (m *Metrics) Print(outcome Outcome) {
	fmt.Println("=== Engagement Metrics ===")
	fmt.Printf("Detection sweeps     : %d\n", m.DetectionSweeps)
	fmt.Printf("Steering commands    : %d (%d terminal)\n", m.SteeringCommands, m.TerminalCommands)
	fmt.Printf("Decoys deployed      : %d\n", m.DecoysDeployed)
	fmt.Printf("Evasion cues         : %d\n", m.EvasionCues)
	fmt.Printf("Result               : %s\n", outcome)
}

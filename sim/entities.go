// Entity variants dispatched by the kernel: one per participant kind. Each is
// a thin adapter that buffers messages in ExtTransition and invokes its
// controller's pure decision function from Output, keeping the decision core
// free of kernel control flow.

package sim

import "fmt"

// Ports connecting the engagement entities.
const (
	PortDetectionsAttack  = "detections.attack"
	PortDetectionsDefense = "detections.defense"
	PortSteering          = "command.steering"
	PortDeploy            = "command.deploy"
	PortEvasion           = "command.evasion"
)

// detectorEntity sweeps the world every scan interval and pushes contact
// reports to both sides. The detection physics live in World; this entity is
// only the scheduling shell.
type detectorEntity struct {
	sim      *Simulator
	interval int64
}

func (d *detectorEntity) Name() string		{ return "detector" }
func (d *detectorEntity) TimeAdvance() int64	{ return d.interval }

func (d *detectorEntity) Output(k *Kernel) {
	d.sim.Metrics.DetectionSweeps++
	k.Send(PortDetectionsAttack, d.sim.World.SenseAttack(k.Clock))
	k.Send(PortDetectionsDefense, d.sim.World.SenseDefense(k.Clock))
}

func (d *detectorEntity) IntTransition(*Kernel)			{}
func (d *detectorEntity) ExtTransition(*Kernel, string, any)	{}

// torpedoEntity wraps the attacker's tracking controller. Passive until a
// detection sweep arrives, then decides in the same tick.
type torpedoEntity struct {
	sim     *Simulator
	pending []ContactReport
	armed   bool
}

func (t *torpedoEntity) Name() string		{ return "torpedo" }
func (t *torpedoEntity) TimeAdvance() int64	{ return Passive }

func (t *torpedoEntity) ExtTransition(k *Kernel, port string, payload any) {
	if port != PortDetectionsAttack {
		return
	}
	t.pending = payload.([]ContactReport)
	if !t.armed {
		t.armed = true
		k.ScheduleAfter(t, 0)
	}
}

func (t *torpedoEntity) Output(k *Kernel) {
	if !t.armed {
		return
	}
	cmd := t.sim.Tracker.Step(k.Clock, t.pending)
	if cmd == nil {
		return // searching with no candidate: drift on last heading
	}
	t.sim.Metrics.SteeringCommands++
	if cmd.Terminal {
		t.sim.Metrics.TerminalCommands++
	}
	t.sim.record(fmt.Sprintf("%d steer contact=%s bearing=%.4f terminal=%v",
		cmd.Tick, cmd.ContactID, cmd.Bearing, cmd.Terminal))
	k.Send(PortSteering, cmd)
}

func (t *torpedoEntity) IntTransition(*Kernel) {
	t.armed = false
	t.pending = nil
}

// shipEntity wraps the defender's threat controller.
type shipEntity struct {
	sim     *Simulator
	pending []ContactReport
	armed   bool
}

func (s *shipEntity) Name() string		{ return "ship" }
func (s *shipEntity) TimeAdvance() int64	{ return Passive }

func (s *shipEntity) ExtTransition(k *Kernel, port string, payload any) {
	if port != PortDetectionsDefense {
		return
	}
	s.pending = payload.([]ContactReport)
	if !s.armed {
		s.armed = true
		k.ScheduleAfter(s, 0)
	}
}

func (s *shipEntity) Output(k *Kernel) {
	if !s.armed {
		return
	}
	decision := s.sim.Threat.Step(k.Clock, s.sim.World.ShipState(), s.pending)
	for _, dep := range decision.Deployments {
		s.sim.Metrics.DecoysDeployed++
		s.sim.record(fmt.Sprintf("%d deploy id=%s kind=%s at=(%.4f,%.4f) offset=%d",
			dep.Tick, dep.DecoyID, dep.Kind, dep.Placement.X, dep.Placement.Y, dep.TimingOffset))
		k.Send(PortDeploy, dep)
	}
	if decision.Evasion != nil {
		s.sim.Metrics.EvasionCues++
		s.sim.record(fmt.Sprintf("%d evade heading=%.4f pattern=%s",
			decision.Evasion.Tick, decision.Evasion.Heading, decision.Evasion.Pattern))
		k.Send(PortEvasion, decision.Evasion)
	}
}

func (s *shipEntity) IntTransition(*Kernel) {
	s.armed = false
	s.pending = nil
}

// worldEntity advances the kinematics once per tick and raises the
// proximity-kill halt. It must be registered first so each tick's movement
// precedes that tick's detection sweep.
type worldEntity struct {
	sim *Simulator
}

func (w *worldEntity) Name() string		{ return "world" }
func (w *worldEntity) TimeAdvance() int64	{ return 1 }

func (w *worldEntity) Output(*Kernel) {}

func (w *worldEntity) IntTransition(k *Kernel) {
	if w.sim.World.Advance(k.Clock) {
		k.Halt()
	}
}

func (w *worldEntity) ExtTransition(k *Kernel, port string, payload any) {
	switch port {
	case PortSteering:
		w.sim.World.BufferSteering(payload.(*SteeringCommand))
	case PortDeploy:
		w.sim.World.BufferDeploy(payload.(DeployCommand))
	case PortEvasion:
		w.sim.World.BufferEvasion(payload.(*EvasionCue))
	}
}

// The discrete-event kernel and the atomic-entity contract the engagement
// models plug into. Every entity exposes the same four operations (time
// advance, internal transition, external transition, output); the kernel owns
// the clock and dispatches them from a heap-ordered event queue.

package sim

import (
	"container/heap"

	"github.com/sirupsen/logrus"
)

// Passive is the time advance of an entity with no scheduled internal
// transition; it only wakes on external input.
const Passive int64 = -1

// Entity is the atomic simulation model contract. Implementations keep the
// hard decision logic inside pure functions called from these hooks, free of
// kernel-specific control flow.
type Entity interface {
	// Name identifies the entity in logs and routing.
	Name() string
	// TimeAdvance returns the delay (ticks) until the next internal
	// transition, or Passive.
	TimeAdvance() int64
	// Output emits messages via Kernel.Send. Called immediately before the
	// internal transition, at the scheduled time.
	Output(k *Kernel)
	// IntTransition advances internal state at the scheduled time.
	IntTransition(k *Kernel)
	// ExtTransition handles a message delivered on a connected port.
	ExtTransition(k *Kernel, port string, payload any)
}

// entityEvent is one scheduled activation. seq breaks timestamp ties in
// insertion order, which makes same-tick execution deterministic.
type entityEvent struct {
	time   int64
	seq    int64
	entity Entity
}

// eventQueue implements heap.Interface ordered by (time, seq).
type eventQueue []entityEvent

func (eq eventQueue) Len() int { return len(eq) }
func (eq eventQueue) Less(i, j int) bool {
	if eq[i].time != eq[j].time {
		return eq[i].time < eq[j].time
	}
	return eq[i].seq < eq[j].seq
}
func (eq eventQueue) Swap(i, j int) { eq[i], eq[j] = eq[j], eq[i] }

func (eq *eventQueue) Push(x any) {
	*eq = append(*eq, x.(entityEvent))
}

func (eq *eventQueue) Pop() any {
	old := *eq
	n := len(old)
	item := old[n-1]
	*eq = old[0 : n-1]
	return item
}

// Kernel holds simulation time and the event loop. Single logical timeline:
// all transitions for a given instant run sequentially, never in parallel.
type Kernel struct {
	Clock   int64
	Horizon int64

	queue    eventQueue
	seq      int64
	entities []Entity
	routes   map[string][]Entity
	halted   bool
}

// NewKernel creates a kernel that stops once the clock passes horizon.
func NewKernel(horizon int64) *Kernel {
	return &Kernel{
		Horizon: horizon,
		queue:   make(eventQueue, 0),
		routes:  make(map[string][]Entity),
	}
}

// Register adds an entity. Registration order fixes the order of same-tick
// activations for periodic entities, so register in the order transitions
// should run within a tick.
func (k *Kernel) Register(e Entity) {
	k.entities = append(k.entities, e)
	if ta := e.TimeAdvance(); ta != Passive {
		k.ScheduleAfter(e, ta)
	}
}

// Connect routes messages sent on port to dst's ExtTransition. A port may
// fan out to several entities; delivery follows connection order.
func (k *Kernel) Connect(port string, dst Entity) {
	k.routes[port] = append(k.routes[port], dst)
}

// ScheduleAfter enqueues an activation of e at Clock+delay.
func (k *Kernel) ScheduleAfter(e Entity, delay int64) {
	ev := entityEvent{time: k.Clock + delay, seq: k.seq, entity: e}
	k.seq++
	heap.Push(&k.queue, ev)
}

// Send delivers payload to every entity connected to port, synchronously, at
// the current clock. Receivers typically buffer the message and schedule an
// immediate activation.
func (k *Kernel) Send(port string, payload any) {
	dsts := k.routes[port]
	if len(dsts) == 0 {
		logrus.Debugf("[tick %07d] message on unconnected port %q dropped", k.Clock, port)
		return
	}
	for _, dst := range dsts {
		dst.ExtTransition(k, port, payload)
	}
}

// Halt stops the run after the current event finishes. Used for the
// proximity-kill terminal condition.
func (k *Kernel) Halt() {
	k.halted = true
}

// Halted reports whether Halt was called.
func (k *Kernel) Halted() bool { return k.halted }

// Run drives the event loop until the queue drains, the horizon passes, or
// an entity halts the simulation.
func (k *Kernel) Run() {
	for len(k.queue) > 0 && !k.halted {
		ev := heap.Pop(&k.queue).(entityEvent)
		if ev.time > k.Horizon {
			k.Clock = k.Horizon
			break
		}
		k.Clock = ev.time
		logrus.Debugf("[tick %07d] activating %s", k.Clock, ev.entity.Name())
		ev.entity.Output(k)
		ev.entity.IntTransition(k)
		if k.halted {
			break
		}
		if ta := ev.entity.TimeAdvance(); ta != Passive {
			k.ScheduleAfter(ev.entity, ta)
		}
	}
	logrus.Infof("[tick %07d] simulation ended", k.Clock)
}

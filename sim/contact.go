// Defines the Contact struct and the ContactTable that owns all live contacts
// for one side of the engagement. A contact's identity is stable for its whole
// lifetime; it is never merged with another contact id.

package sim

import "fmt"

// Classification is the current best guess at what a contact is.
type Classification string

const (
	Unknown         Classification = "UNKNOWN"
	LikelyDecoy     Classification = "LIKELY_DECOY"
	LikelyTarget    Classification = "LIKELY_TARGET"
	ConfirmedTarget Classification = "CONFIRMED_TARGET"
)

// ContactReport is one detector observation of one contact, delivered as part
// of a detection sweep. KindHint carries the detector's source-kind guess and
// is sometimes withheld (empty) to force inference from the track itself.
type ContactReport struct {
	ContactID      string
	Bearing        float64 // degrees, 0 = north, clockwise
	Range          float64
	RadialVelocity float64 // negative = closing
	SignalStrength float64
	KindHint       string // "ship", "decoy" or "" when withheld
}

// sampleRing is a bounded ordered sequence of float samples, oldest first.
// Pushing beyond capacity drops the oldest sample.
type sampleRing struct {
	buf   []float64
	start int
	n     int
}

func newSampleRing(capacity int) *sampleRing {
	return &sampleRing{buf: make([]float64, capacity)}
}

func (r *sampleRing) Push(v float64) {
	if r.n < len(r.buf) {
		r.buf[(r.start+r.n)%len(r.buf)] = v
		r.n++
		return
	}
	r.buf[r.start] = v
	r.start = (r.start + 1) % len(r.buf)
}

func (r *sampleRing) Len() int { return r.n }

// At returns the i-th sample, oldest first.
func (r *sampleRing) At(i int) float64 { return r.buf[(r.start+i)%len(r.buf)] }

// Last returns the newest sample. Callers must check Len first.
func (r *sampleRing) Last() float64 { return r.At(r.n - 1) }

// Values copies the samples oldest-first into a fresh slice.
func (r *sampleRing) Values() []float64 {
	out := make([]float64, r.n)
	for i := 0; i < r.n; i++ {
		out[i] = r.At(i)
	}
	return out
}

// Contact is one sensor-observed entity with a stable identity but uncertain
// classification. Created on first detection, updated every tick it remains
// visible, pruned after the configured silence timeout.
type Contact struct {
	ID            string
	FirstSeenTick int64
	LastSeenTick  int64

	Bearing        float64
	Range          float64
	RadialVelocity float64
	KindHint       string // latest non-empty hint seen, if any

	SignalHistory  *sampleRing // signal strength per observation
	RangeHistory   *sampleRing
	BearingHistory *sampleRing

	Classification Classification
	Confidence     float64 // in [0,1]

	// Ticks observed in a row without a gap. Resets when a sweep misses
	// the contact but the silence timeout has not yet pruned it.
	ConsecutiveTicks int
}

func (c *Contact) String() string {
	return fmt.Sprintf("Contact(ID: %s, class: %s, conf: %.2f, range: %.1f)",
		c.ID, c.Classification, c.Confidence, c.Range)
}

// ContactTable owns all live contacts for one side. Iteration order is
// first-seen order (ties impossible: ids are observed sequentially within a
// sweep), which keeps every per-tick evaluation deterministic.
type ContactTable struct {
	contacts map[string]*Contact
	order    []string // ids in first-seen order
	depth    int      // ring capacity for new contacts
	gap      int64    // max tick gap still counted as continuous detection
}

// NewContactTable creates an empty table whose contacts keep up to depth
// history samples each. gap is the detector's sweep interval: observations
// that many ticks apart count as continuous detection.
func NewContactTable(depth int, gap int64) *ContactTable {
	return &ContactTable{
		contacts: make(map[string]*Contact),
		depth:    depth,
		gap:      gap,
	}
}

// Observe folds one report into the table, creating the contact on first
// detection. A brand-new contact starts as Unknown: with no history the most
// conservative classification applies.
func (t *ContactTable) Observe(tick int64, rep ContactReport) *Contact {
	c, ok := t.contacts[rep.ContactID]
	if !ok {
		c = &Contact{
			ID:             rep.ContactID,
			FirstSeenTick:  tick,
			SignalHistory:  newSampleRing(t.depth),
			RangeHistory:   newSampleRing(t.depth),
			BearingHistory: newSampleRing(t.depth),
			Classification: Unknown,
		}
		t.contacts[rep.ContactID] = c
		t.order = append(t.order, rep.ContactID)
	}
	switch {
	case !ok:
		c.ConsecutiveTicks = 1
	case tick-c.LastSeenTick <= t.gap:
		c.ConsecutiveTicks++
	default:
		c.ConsecutiveTicks = 1
	}
	c.LastSeenTick = tick
	c.Bearing = rep.Bearing
	c.Range = rep.Range
	c.RadialVelocity = rep.RadialVelocity
	if rep.KindHint != "" {
		c.KindHint = rep.KindHint
	}
	c.SignalHistory.Push(rep.SignalStrength)
	c.RangeHistory.Push(rep.Range)
	c.BearingHistory.Push(rep.Bearing)
	return c
}

// Get returns the contact with the given id, or nil if it is not live.
func (t *ContactTable) Get(id string) *Contact {
	return t.contacts[id]
}

// Live returns all live contacts in first-seen order. The returned slice is
// fresh; the contacts themselves are the table's own.
func (t *ContactTable) Live() []*Contact {
	out := make([]*Contact, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.contacts[id])
	}
	return out
}

// Len returns the number of live contacts.
func (t *ContactTable) Len() int { return len(t.contacts) }

// Prune removes contacts not seen for longer than timeout ticks and returns
// the pruned ids in first-seen order. Controllers holding one of these ids
// must take their "lost" transition.
func (t *ContactTable) Prune(tick int64, timeout int64) []string {
	var pruned []string
	kept := t.order[:0]
	for _, id := range t.order {
		c := t.contacts[id]
		if tick-c.LastSeenTick > timeout {
			delete(t.contacts, id)
			pruned = append(pruned, id)
			continue
		}
		kept = append(kept, id)
	}
	t.order = kept
	return pruned
}

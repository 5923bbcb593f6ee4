// Package gas implements the metered-work counter of spec.md §4.A. The
// teacher's core/vm/gas.go tracks cost with *big.Int because EVM gas prices
// are economically meaningful 256-bit values; our schedule's costs are small
// fixed integers (spec.md §3's "regular op cost, memory-grow cost... per
// host-call costs"), so the meter itself uses plain uint64 counters, but it
// keeps the teacher's shape: a running amount, a saturating charge, and a
// callGas-style reserve fraction for deriving a child meter's limit.
package gas

import "github.com/dusk-network/rusk-vm/vmerrors"

// childReserveNumerator/Denominator give the ≈93% reserve fraction spec.md
// §4.A specifies for child(0): "a reserve fraction (≈93%) of parent.left".
// The teacher reserves 1/64th of the caller's gas on every CALL
// (core/vm/gas.go's callGas, the "63/64 rule"); we generalize that same
// reserve-a-fraction idiom to the VM's own nested-call convention, landing
// on 93/100 to match the ≈93% the spec calls out explicitly.
const (
	childReserveNumerator   = 93
	childReserveDenominator = 100
)

// Meter is the (limit, left, spent) triple of spec.md §3: "Triple (limit,
// left, spent = limit − left). Monotone: left only decreases within a call".
type Meter struct {
	limit   uint64
	left    uint64
	samples []uint64 // gasmonitor-style usage sampler, see SPEC_FULL.md "Supplemented features"
}

// maxSamples bounds the gasmonitor ring buffer; the buffer is diagnostic
// only and never affects consensus-relevant behavior.
const maxSamples = 64

// WithLimit constructs a fresh top-level meter with left == limit.
func WithLimit(limit uint64) *Meter {
	return &Meter{limit: limit, left: limit}
}

// Limit returns the meter's configured limit.
func (m *Meter) Limit() uint64 { return m.limit }

// Left returns the gas remaining.
func (m *Meter) Left() uint64 { return m.left }

// Spent returns limit - left.
func (m *Meter) Spent() uint64 { return m.limit - m.left }

// Charge deducts n from left, saturating to zero and returning an OutOfGas
// error if n exceeds what remains (spec.md §4.A: "saturating to zero on
// overflow... any charge that would go negative returns OutOfGas").
func (m *Meter) Charge(n uint64) error {
	if n > m.left {
		m.left = 0
		m.record(n)
		return vmerrors.New(vmerrors.OutOfGas, "charge exceeds remaining gas")
	}
	m.left -= n
	m.record(n)
	return nil
}

// Exhaust forces left to zero unconditionally (spec.md §4.A).
func (m *Meter) Exhaust() {
	m.left = 0
}

// Child derives a sub-call meter. If requested is zero, the child gets the
// ≈93% reserve fraction of the parent's remaining gas; otherwise it gets
// min(requested, parent.left) (spec.md §4.A).
func (m *Meter) Child(requested uint64) *Meter {
	var childLimit uint64
	if requested == 0 {
		childLimit = m.left * childReserveNumerator / childReserveDenominator
	} else if requested < m.left {
		childLimit = requested
	} else {
		childLimit = m.left
	}
	return WithLimit(childLimit)
}

// Reconcile decreases the parent's left by the child's spent amount, after
// the sub-call completes (spec.md §4.A: "on sub-call completion the
// parent's left is decreased by the child's spent").
func (m *Meter) Reconcile(child *Meter) {
	spent := child.Spent()
	if spent > m.left {
		// The sub-call somehow spent more than the parent had reserved for
		// it; this can't happen if Child() was used honestly, but we clamp
		// defensively rather than underflow the counter.
		m.left = 0
		return
	}
	m.left -= spent
}

func (m *Meter) record(n uint64) {
	m.samples = append(m.samples, n)
	if len(m.samples) > maxSamples {
		m.samples = m.samples[len(m.samples)-maxSamples:]
	}
}

// Samples returns a copy of the most recent charge amounts, newest last.
// It is diagnostic: no code path in this module, including the debug host
// import, reads it.
func (m *Meter) Samples() []uint64 {
	out := make([]uint64, len(m.samples))
	copy(out, m.samples)
	return out
}

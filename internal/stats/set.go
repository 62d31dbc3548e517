package stats

import (
	"math"
	"strconv"
	"strings"

	"linefilter/internal/classifier"
)

// Set holds one independent Accumulator per kind.
type Set struct {
	accs [classifier.NumKinds]Accumulator
}

// NewSet returns a Set with every accumulator empty.
func NewSet() *Set {
	s := &Set{}
	s.Reset()
	return s
}

// Reset empties every accumulator.
func (s *Set) Reset() {
	for _, k := range classifier.Kinds {
		s.accs[k] = newAccumulator(k)
	}
}

// For returns the accumulator of kind k.
func (s *Set) For(k classifier.Kind) *Accumulator {
	return &s.accs[k]
}

// Count returns the number of values recorded for kind k.
func (s *Set) Count(k classifier.Kind) uint64 {
	return s.accs[k].count
}

// Total returns the number of values recorded across all kinds.
func (s *Set) Total() uint64 {
	var n uint64
	for i := range s.accs {
		n += s.accs[i].count
	}
	return n
}

// Record routes a classified line to the accumulator of its kind.
func (s *Set) Record(c classifier.Classification) {
	acc := &s.accs[c.Kind]
	switch c.Kind {
	case classifier.Integer:
		acc.RecordInteger(c.IntValue)
	case classifier.Float:
		acc.RecordFloat(c.FloatValue)
	default:
		acc.RecordString(c.Text)
	}
}

// Snapshot is a display-ready copy of one accumulator. Fields that do not
// apply to the kind, or to an empty accumulator, are left zero.
type Snapshot struct {
	Kind      classifier.Kind
	Count     uint64
	Min       string
	Max       string
	Sum       string
	Average   float64
	MinLength int
	MaxLength int
}

// Snapshot captures the accumulator's current state.
func (a *Accumulator) Snapshot() Snapshot {
	snap := Snapshot{Kind: a.kind, Count: a.count}
	if a.count == 0 {
		return snap
	}

	switch a.kind {
	case classifier.Integer:
		snap.Min = a.intMin.String()
		snap.Max = a.intMax.String()
		snap.Sum = a.intSum.String()
		snap.Average = a.Average()
	case classifier.Float:
		snap.Min = formatFloat(a.floatMin)
		snap.Max = formatFloat(a.floatMax)
		snap.Sum = formatFloat(a.floatSum)
		snap.Average = a.Average()
	case classifier.String:
		snap.MinLength = a.minLen
		snap.MaxLength = a.maxLen
	}
	return snap
}

// Snapshots returns snapshots of every kind in report order.
func (s *Set) Snapshots() []Snapshot {
	out := make([]Snapshot, 0, classifier.NumKinds)
	for _, k := range classifier.Kinds {
		out = append(out, s.accs[k].Snapshot())
	}
	return out
}

// formatFloat prints v in plain decimal notation for magnitudes in
// [1e-3, 1e7) and in exponent notation otherwise. Plain values always keep
// a fractional part so a float is never mistaken for an integer.
func formatFloat(v float64) string {
	abs := math.Abs(v)
	if math.IsNaN(v) || math.IsInf(v, 0) || (abs != 0 && (abs < 1e-3 || abs >= 1e7)) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

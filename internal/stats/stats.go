// Package stats accumulates running statistics for each data kind.
package stats

import (
	"math"
	"math/big"
	"strconv"
	"unicode/utf8"

	"linefilter/internal/classifier"
)

// AveragePlaces is the number of decimal places averages are rounded to.
const AveragePlaces = 5

// Accumulator folds the values of one kind into running aggregates.
// The zero value is not usable; obtain accumulators from a Set.
type Accumulator struct {
	kind  classifier.Kind
	count uint64

	intSum *big.Int
	intMin *big.Int
	intMax *big.Int

	floatSum float64
	floatMin float64
	floatMax float64

	minLen int
	maxLen int
}

func newAccumulator(kind classifier.Kind) Accumulator {
	return Accumulator{kind: kind, intSum: new(big.Int)}
}

// Kind returns the kind this accumulator tracks.
func (a *Accumulator) Kind() classifier.Kind {
	return a.kind
}

// Count returns the number of values recorded.
func (a *Accumulator) Count() uint64 {
	return a.count
}

// Empty reports whether nothing has been recorded.
func (a *Accumulator) Empty() bool {
	return a.count == 0
}

// RecordInteger adds an exact integer value.
func (a *Accumulator) RecordInteger(v *big.Int) {
	a.count++
	a.intSum.Add(a.intSum, v)
	if a.intMin == nil || v.Cmp(a.intMin) < 0 {
		a.intMin = new(big.Int).Set(v)
	}
	if a.intMax == nil || v.Cmp(a.intMax) > 0 {
		a.intMax = new(big.Int).Set(v)
	}
}

// RecordFloat adds a floating point value. Rounding error in the running
// sum is accepted.
func (a *Accumulator) RecordFloat(v float64) {
	if a.count == 0 || v < a.floatMin {
		a.floatMin = v
	}
	if a.count == 0 || v > a.floatMax {
		a.floatMax = v
	}
	a.count++
	a.floatSum += v
}

// RecordString tracks the character length of text.
func (a *Accumulator) RecordString(text string) {
	n := utf8.RuneCountInString(text)
	if a.count == 0 || n < a.minLen {
		a.minLen = n
	}
	if a.count == 0 || n > a.maxLen {
		a.maxLen = n
	}
	a.count++
}

// IntegerSum returns a copy of the exact integer sum.
func (a *Accumulator) IntegerSum() *big.Int {
	return new(big.Int).Set(a.intSum)
}

// IntegerMin returns the smallest integer recorded, or nil when empty.
func (a *Accumulator) IntegerMin() *big.Int {
	if a.intMin == nil {
		return nil
	}
	return new(big.Int).Set(a.intMin)
}

// IntegerMax returns the largest integer recorded, or nil when empty.
func (a *Accumulator) IntegerMax() *big.Int {
	if a.intMax == nil {
		return nil
	}
	return new(big.Int).Set(a.intMax)
}

// FloatSum returns the floating point sum.
func (a *Accumulator) FloatSum() float64 {
	return a.floatSum
}

// FloatMin returns the smallest float recorded. ok is false when empty.
func (a *Accumulator) FloatMin() (v float64, ok bool) {
	return a.floatMin, a.count > 0
}

// FloatMax returns the largest float recorded. ok is false when empty.
func (a *Accumulator) FloatMax() (v float64, ok bool) {
	return a.floatMax, a.count > 0
}

// MinLength returns the shortest string length, 0 when empty.
func (a *Accumulator) MinLength() int {
	return a.minLen
}

// MaxLength returns the longest string length, 0 when empty.
func (a *Accumulator) MaxLength() int {
	return a.maxLen
}

// Average returns sum/count rounded half-up to AveragePlaces decimals.
// It is 0 for an empty accumulator and for the String kind.
func (a *Accumulator) Average() float64 {
	if a.count == 0 {
		return 0
	}

	var avg float64
	switch a.kind {
	case classifier.Integer:
		sum, _ := new(big.Float).SetInt(a.intSum).Float64()
		avg = sum / float64(a.count)
	case classifier.Float:
		avg = a.floatSum / float64(a.count)
	default:
		return 0
	}
	return RoundHalfUp(avg, AveragePlaces)
}

// RoundHalfUp rounds v to the given number of decimal places, with ties
// rounded away from zero. Rounding operates on the shortest decimal
// representation of v, so 0.125 rounds to 0.13 at two places even though
// its binary value is not exactly 0.125. NaN and infinities are returned
// unchanged.
func RoundHalfUp(v float64, places int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}

	r, ok := new(big.Rat).SetString(strconv.FormatFloat(v, 'g', -1, 64))
	if !ok {
		return v
	}

	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(places)), nil)
	neg := r.Sign() < 0
	r.Abs(r)
	r.Mul(r, new(big.Rat).SetInt(scale))
	r.Add(r, big.NewRat(1, 2))

	q := new(big.Int).Quo(r.Num(), r.Denom())
	if neg {
		q.Neg(q)
	}

	out, _ := new(big.Rat).SetFrac(q, scale).Float64()
	return out
}

package engine

import (
	"fmt"
	"math"

	"github.com/aclements/go-moremath/scale"
	"github.com/aclements/go-moremath/stats"
)

// ============================================================================
// LINEAR SCALE — Continuous domain → pixel range
// ============================================================================
// Immutable once built. Layout rebuilds every scale on every pass.
//
// Mapping goes through moremath's scale.Linear for the normalized position
// t ∈ [0,1], then interpolates the pixel range so both ends land exactly on
// rangeLo and rangeHi. A degenerate domain (min == max) maps every value to
// the range midpoint.
// ============================================================================

const defaultTickCount = 10

// LinearScale maps a continuous domain onto a pixel range.
type LinearScale struct {
	lin       scale.Linear
	rangeLo   float64
	rangeHi   float64
	tickCount int
}

// NewLinearScale builds a scale whose domain is [min(values), max(values)].
// With nice set, the domain is expanded outward to multiples of a 1-2-5 step
// sized for tickCount ticks. Empty values return ErrEmptyDomain.
func NewLinearScale(values []float64, rangeLo, rangeHi float64, nice bool, tickCount int) (*LinearScale, error) {
	if len(values) == 0 {
		return nil, ErrEmptyDomain
	}
	lo, hi := stats.Bounds(values)
	if !isFinite(lo) || !isFinite(hi) {
		return nil, fmt.Errorf("%w: domain [%v, %v]", ErrNonFinite, lo, hi)
	}
	if tickCount < 1 {
		tickCount = defaultTickCount
	}
	if nice {
		lo, hi = niceDomain(lo, hi, tickCount)
	}
	return &LinearScale{
		lin:       scale.Linear{Min: lo, Max: hi},
		rangeLo:   rangeLo,
		rangeHi:   rangeHi,
		tickCount: tickCount,
	}, nil
}

// Domain returns the (possibly niced) domain bounds.
func (s *LinearScale) Domain() (lo, hi float64) { return s.lin.Min, s.lin.Max }

// Range returns the pixel range the domain maps onto.
func (s *LinearScale) Range() (lo, hi float64) { return s.rangeLo, s.rangeHi }

// Degenerate reports whether the domain collapses to a single value.
func (s *LinearScale) Degenerate() bool { return s.lin.Min == s.lin.Max }

// Map converts a domain value to a pixel position.
func (s *LinearScale) Map(v float64) float64 {
	if s.Degenerate() {
		return (s.rangeLo + s.rangeHi) / 2
	}
	t := s.lin.Map(v)
	return s.rangeLo*(1-t) + s.rangeHi*t
}

// Invert converts a pixel position back to a domain value. A degenerate
// domain or range inverts to the domain minimum.
func (s *LinearScale) Invert(px float64) float64 {
	if s.Degenerate() || s.rangeLo == s.rangeHi {
		return s.lin.Min
	}
	t := (px - s.rangeLo) / (s.rangeHi - s.rangeLo)
	return s.lin.Min*(1-t) + s.lin.Max*t
}

// Ticks returns increasing tick values inside the domain, at most the
// scale's tick count of them. A degenerate domain has a single tick.
func (s *LinearScale) Ticks() []float64 {
	lo, hi := s.lin.Min, s.lin.Max
	if lo == hi {
		return []float64{lo}
	}

	guess := int(math.Floor(3 * math.Log10((hi-lo)/float64(s.tickCount))))
	o := scale.TickOptions{
		Max:      s.tickCount,
		MinLevel: guess - 12,
		MaxLevel: guess + 12,
	}
	level, ok := o.FindLevel(tickLadder{lo: lo, hi: hi}, guess)
	if !ok {
		return []float64{lo, hi}
	}
	return ladderStep(level).values(lo, hi)
}

// tickLadder exposes the 1-2-5 ladder over [lo, hi] as a scale.Ticker.
type tickLadder struct{ lo, hi float64 }

func (l tickLadder) CountTicks(level int) int {
	st := ladderStep(level)
	return int(st.floor(l.hi) - st.ceil(l.lo) + 1)
}

func (l tickLadder) TicksAtLevel(level int) interface{} {
	return ladderStep(level).values(l.lo, l.hi)
}

// ============================================================================
// TICK STEPS — 1-2-5 ladder
// ============================================================================
// A step below 1 is kept as its exact reciprocal so tick values come out as
// k/inv rather than accumulating float error from k*step.

type tickStep struct {
	step float64 // valid when inv == 0
	inv  float64 // step = 1/inv
}

var ladder = [3]float64{1, 2, 5}

// ladderStep returns the step at a tick level. Level 0 is 1, level 1 is 2,
// level 2 is 5, level 3 is 10, level -1 is 0.5, and so on.
func ladderStep(level int) tickStep {
	exp := level / 3
	idx := level % 3
	if idx < 0 {
		idx += 3
		exp--
	}
	if exp >= 0 {
		return tickStep{step: ladder[idx] * math.Pow(10, float64(exp))}
	}
	return tickStep{inv: math.Pow(10, float64(-exp)) / ladder[idx]}
}

func (t tickStep) floor(v float64) float64 {
	if t.inv > 0 {
		return math.Floor(v * t.inv)
	}
	return math.Floor(v / t.step)
}

func (t tickStep) ceil(v float64) float64 {
	if t.inv > 0 {
		return math.Ceil(v * t.inv)
	}
	return math.Ceil(v / t.step)
}

func (t tickStep) at(k float64) float64 {
	if t.inv > 0 {
		return k / t.inv
	}
	return k * t.step
}

func (t tickStep) values(lo, hi float64) []float64 {
	first, last := t.ceil(lo), t.floor(hi)
	out := make([]float64, 0, int(math.Max(0, last-first+1)))
	for k := first; k <= last; k++ {
		if v := t.at(k); v >= lo && v <= hi {
			out = append(out, v)
		}
	}
	return out
}

// ============================================================================
// NICE — Outward rounding to step multiples
// ============================================================================

// niceStep picks the 1-2-5 step closest in log distance to span/count.
func niceStep(lo, hi float64, count int) tickStep {
	raw := (hi - lo) / float64(count)
	power := math.Floor(math.Log10(raw))
	e := raw / math.Pow(10, power)
	factor := 1.0
	switch {
	case e >= math.Sqrt(50):
		factor = 10
	case e >= math.Sqrt(10):
		factor = 5
	case e >= math.Sqrt(2):
		factor = 2
	}
	if power >= 0 {
		return tickStep{step: factor * math.Pow(10, power)}
	}
	return tickStep{inv: math.Pow(10, -power) / factor}
}

// niceDomain floors lo and ceils hi to the step chosen for the raw span, in
// a single pass. A degenerate domain is returned unchanged.
func niceDomain(lo, hi float64, count int) (float64, float64) {
	if lo == hi {
		return lo, hi
	}
	st := niceStep(lo, hi, count)
	return st.at(st.floor(lo)), st.at(st.ceil(hi))
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

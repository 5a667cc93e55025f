package engine

import (
	"fmt"
	"math"
)

// ============================================================================
// BAND SCALE — Categorical keys → equal-width bands
// ============================================================================
//
//	step      = (rangeHi - rangeLo) / max(1, n - paddingInner + 2*paddingOuter)
//	bandwidth = step * (1 - paddingInner)
//
// Leftover space is split evenly on both sides, so bands stay centered.
// With paddingInner = 1 the bandwidth collapses to 0 and each key is a point
// at its band center (box plots).
// ============================================================================

// BandScale maps ordered categorical keys onto bands of a pixel range.
type BandScale struct {
	keys      []string
	index     map[string]int
	start     float64
	step      float64
	bandwidth float64
}

// NewBandScale builds a band scale over keys in the given order. Duplicate
// keys keep their first position.
func NewBandScale(keys []string, rangeLo, rangeHi, paddingInner, paddingOuter float64) (*BandScale, error) {
	if paddingInner < 0 || paddingInner > 1 || paddingOuter < 0 ||
		math.IsNaN(paddingInner) || math.IsNaN(paddingOuter) {
		return nil, fmt.Errorf("%w: inner=%v outer=%v", ErrInvalidPadding, paddingInner, paddingOuter)
	}

	b := &BandScale{index: make(map[string]int, len(keys))}
	for _, k := range keys {
		if _, dup := b.index[k]; dup {
			continue
		}
		b.index[k] = len(b.keys)
		b.keys = append(b.keys, k)
	}
	n := float64(len(b.keys))
	if n == 0 {
		return nil, ErrEmptyDomain
	}

	span := rangeHi - rangeLo
	b.step = span / math.Max(1, n-paddingInner+2*paddingOuter)
	b.start = rangeLo + (span-b.step*(n-paddingInner))*0.5
	b.bandwidth = b.step * (1 - paddingInner)
	return b, nil
}

// Band returns the start offset and width of a key's band.
func (b *BandScale) Band(key string) (start, width float64, ok bool) {
	i, ok := b.index[key]
	if !ok {
		return 0, 0, false
	}
	return b.start + b.step*float64(i), b.bandwidth, true
}

// Center returns the midpoint of a key's band.
func (b *BandScale) Center(key string) (float64, bool) {
	start, width, ok := b.Band(key)
	return start + width/2, ok
}

func (b *BandScale) Step() float64      { return b.step }
func (b *BandScale) Bandwidth() float64 { return b.bandwidth }

// Keys returns the scale's keys in band order.
func (b *BandScale) Keys() []string { return append([]string(nil), b.keys...) }

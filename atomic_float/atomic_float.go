package atomic_float

import (
	"math"
	"sync/atomic"
)

// AtomicFloat64 is a float64 that one goroutine writes and others read without locking,
// such as the robot battery level shared between the simulation and the live view.
// The bits are held in an atomic.Uint64.
type AtomicFloat64 struct {
	bits atomic.Uint64
}

func NewAtomicFloat64(val float64) *AtomicFloat64 {
	af := &AtomicFloat64{}
	af.bits.Store(math.Float64bits(val))
	return af
}

// AtomicRead returns the current value.
func (af *AtomicFloat64) AtomicRead() float64 {
	return math.Float64frombits(af.bits.Load())
}

// AtomicAdd makes a single attempt to add addend. If another writer got in between the
// read and the swap, succeeded is false and the caller decides whether to retry.
func (af *AtomicFloat64) AtomicAdd(addend float64) (newVal float64, succeeded bool) {
	old := af.bits.Load()
	newVal = math.Float64frombits(old) + addend
	succeeded = af.bits.CompareAndSwap(old, math.Float64bits(newVal))
	return
}

// AtomicSet stores val unconditionally.
func (af *AtomicFloat64) AtomicSet(val float64) {
	af.bits.Store(math.Float64bits(val))
}

// AtomicClampAdd adds addend and clamps the result to [lo, hi], retrying until the swap
// lands. It returns the stored value.
func (af *AtomicFloat64) AtomicClampAdd(addend, lo, hi float64) float64 {
	for {
		old := af.bits.Load()
		newVal := max(lo, min(hi, math.Float64frombits(old)+addend))
		if af.bits.CompareAndSwap(old, math.Float64bits(newVal)) {
			return newVal
		}
	}
}

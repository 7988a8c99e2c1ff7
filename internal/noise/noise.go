// Package noise is the noise source of spec.md §4.9 (C9): it produces N
// independent complex Gaussian samples per millisecond, unit variance per
// component, via a seeded PRNG for reproducibility.
package noise

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Source is a seeded complex-Gaussian noise generator. It is not
// goroutine-safe; the scene loop owns one Source per run and calls Fill
// sequentially, one call per millisecond step (spec.md §5).
type Source struct {
	dist distuv.Normal
}

// NewSource builds a noise source with unit variance per component, seeded
// for deterministic, reproducible runs.
func NewSource(seed uint64) *Source {
	return &Source{dist: distuv.Normal{Mu: 0, Sigma: 1, Src: rand.NewSource(seed)}}
}

// Fill writes len(buf) independent complex Gaussian samples into buf, each
// component drawn with Var=1.
func (s *Source) Fill(buf []complex128) {
	for i := range buf {
		buf[i] = complex(s.dist.Rand(), s.dist.Rand())
	}
}

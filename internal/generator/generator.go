// Package generator draws the digits shown in a level.
package generator

import (
	"math/rand"
	"time"
)

// Generator produces uniformly random digits.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewSeeded returns a Generator with a fixed seed.
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Digits draws count digits independently and uniformly from 0-9.
func (g *Generator) Digits(count int) []int {
	result := make([]int, 0, count)
	for i := 0; i < count; i++ {
		result = append(result, g.rnd.Intn(10))
	}
	return result
}

// WeightedDigits draws count digits with a bias toward the weak set.
// Every digit has weight 1; weak digits get 1+factor.
func (g *Generator) WeightedDigits(count int, weakSet map[int]struct{}, factor float64) []int {
	var weights [10]float64
	total := 0.0
	for d := 0; d < 10; d++ {
		w := 1.0
		if _, ok := weakSet[d]; ok {
			w += factor
		}
		weights[d] = w
		total += w
	}

	result := make([]int, 0, count)
	for i := 0; i < count; i++ {
		r := g.rnd.Float64() * total
		acc := 0.0
		idx := 9
		for d, w := range weights {
			acc += w
			if r <= acc {
				idx = d
				break
			}
		}
		result = append(result, idx)
	}
	return result
}

// Focus biases a Generator toward weak digits. An empty weak set draws
// uniformly.
type Focus struct {
	gen     *Generator
	weakSet map[int]struct{}
	factor  float64
}

// NewFocus wraps gen with the given weak set and weight factor.
func NewFocus(gen *Generator, weakSet map[int]struct{}, factor float64) *Focus {
	return &Focus{gen: gen, weakSet: weakSet, factor: factor}
}

// SetWeak replaces the weak set.
func (f *Focus) SetWeak(weakSet map[int]struct{}) {
	f.weakSet = weakSet
}

// Digits implements the level digit source.
func (f *Focus) Digits(count int) []int {
	if len(f.weakSet) == 0 || f.factor <= 0 {
		return f.gen.Digits(count)
	}
	return f.gen.WeightedDigits(count, f.weakSet, f.factor)
}

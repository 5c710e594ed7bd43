// Package metrics accumulates statistics over completed renders.
package metrics

import (
	"math"

	"github.com/san-kum/mandelzoom/internal/fractal"
)

// Metric observes one completed render at a time.
type Metric interface {
	Name() string
	Observe(p fractal.Params, seconds float64)
	Value() float64
	Reset()
}

type MeanTime struct {
	name    string
	sum     float64
	samples int
}

func NewMeanTime() *MeanTime {
	return &MeanTime{name: "mean_time"}
}

func (m *MeanTime) Name() string { return m.name }

func (m *MeanTime) Observe(p fractal.Params, seconds float64) {
	m.sum += seconds
	m.samples++
}

func (m *MeanTime) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *MeanTime) Reset() {
	m.sum = 0
	m.samples = 0
}

type BestTime struct {
	name string
	best float64
}

func NewBestTime() *BestTime {
	return &BestTime{name: "best_time", best: math.Inf(1)}
}

func (b *BestTime) Name() string { return b.name }

func (b *BestTime) Observe(p fractal.Params, seconds float64) {
	b.best = math.Min(b.best, seconds)
}

// Value is 0 until a render has been observed.
func (b *BestTime) Value() float64 {
	if math.IsInf(b.best, 1) {
		return 0
	}
	return b.best
}

func (b *BestTime) Reset() {
	b.best = math.Inf(1)
}

// Throughput is the mean number of escape-time samples computed per second:
// width * height * samples².
type Throughput struct {
	name    string
	points  float64
	seconds float64
}

func NewThroughput() *Throughput {
	return &Throughput{name: "throughput"}
}

func (t *Throughput) Name() string { return t.name }

func (t *Throughput) Observe(p fractal.Params, seconds float64) {
	if seconds <= 0 || p.Width <= 0 || p.Height <= 0 {
		return
	}
	s := float64(max(p.Samples, 1))
	t.points += float64(p.Width) * float64(p.Height) * s * s
	t.seconds += seconds
}

func (t *Throughput) Value() float64 {
	if t.seconds == 0 {
		return 0
	}
	return t.points / t.seconds
}

func (t *Throughput) Reset() {
	t.points = 0
	t.seconds = 0
}

// Set observes into several metrics at once.
type Set []Metric

func (s Set) Observe(p fractal.Params, seconds float64) {
	for _, m := range s {
		m.Observe(p, seconds)
	}
}

func (s Set) Reset() {
	for _, m := range s {
		m.Reset()
	}
}

// Values returns the current value of every metric keyed by name.
func (s Set) Values() map[string]float64 {
	out := make(map[string]float64, len(s))
	for _, m := range s {
		out[m.Name()] = m.Value()
	}
	return out
}

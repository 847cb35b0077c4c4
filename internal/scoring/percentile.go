package scoring

import (
	"math/rand/v2"
	"sync"
)

// PercentileSource estimates where an accuracy ranks in the candidate
// population. Results are clamped to [0, 99] by the engine.
type PercentileSource interface {
	Percentile(accuracy float64) int
}

// LinearPercentile is the deterministic estimate round(accuracy * 0.9).
type LinearPercentile struct{}

func (LinearPercentile) Percentile(accuracy float64) int {
	return round(accuracy * 0.9)
}

// NoisyPercentile adds up to 10 points of seeded noise to the linear
// estimate. Meant for demo deployments without population data.
type NoisyPercentile struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewNoisyPercentile(seed uint64) *NoisyPercentile {
	return &NoisyPercentile{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (n *NoisyPercentile) Percentile(accuracy float64) int {
	n.mu.Lock()
	noise := n.rng.Float64() * 10
	n.mu.Unlock()
	return round(accuracy*0.9 + noise)
}

// NewPercentileSource picks a source by mode name: "noisy" or anything else for linear.
func NewPercentileSource(mode string, seed uint64) PercentileSource {
	if mode == "noisy" {
		return NewNoisyPercentile(seed)
	}
	return LinearPercentile{}
}

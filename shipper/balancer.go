package shipper

import (
	"sync"
)

// balancer spreads batches over the resolved endpoints with smooth weighted
// round-robin. Equal weights degrade to plain round-robin.
type balancer struct {
	mux     sync.Mutex
	weights []int
	current []int
}

// newBalancer is a factory method for balancer.
func newBalancer(weights []int) *balancer {
	if len(weights) == 0 {
		panic("balancer needs at least one endpoint")
	}
	for _, w := range weights {
		if w < 1 || w > 100 {
			panic("weight must be between 1 and 100")
		}
	}

	return &balancer{
		weights: weights,
		current: make([]int, len(weights)),
	}
}

// next returns the index of the endpoint the following batch goes to.
func (b *balancer) next() int {
	b.mux.Lock()
	defer b.mux.Unlock()

	total := 0
	best := 0
	for i, w := range b.weights {
		b.current[i] += w
		total += w
		if b.current[i] > b.current[best] {
			best = i
		}
	}
	b.current[best] -= total
	return best
}

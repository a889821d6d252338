package workload

import (
	"fmt"
	"math/rand"
	"time"
)

// ArrivalSampler generates the intervals between a node's broadcasts.
type ArrivalSampler interface {
	// SampleInterval returns the time until the next send.
	// Always returns a positive value (>= 1ns).
	SampleInterval(rng *rand.Rand) time.Duration
}

// ExponentialSampler generates exponentially-distributed intervals, so sends
// form a Poisson process.
type ExponentialSampler struct {
	mean time.Duration
}

// NewExponentialSampler returns a sampler with the given mean interval.
func NewExponentialSampler(mean time.Duration) (*ExponentialSampler, error) {
	if mean <= 0 {
		return nil, fmt.Errorf("mean interval must be positive, got %s", mean)
	}
	return &ExponentialSampler{mean: mean}, nil
}

// Mean returns the configured mean interval.
func (s *ExponentialSampler) Mean() time.Duration { return s.mean }

func (s *ExponentialSampler) SampleInterval(rng *rand.Rand) time.Duration {
	iv := time.Duration(rng.ExpFloat64() * float64(s.mean))
	if iv < 1 {
		return 1
	}
	return iv
}

// UniformOffset draws uniformly from [lo, hi). Returns lo when the range is empty.
func UniformOffset(rng *rand.Rand, lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(rng.Int63n(int64(hi-lo)))
}

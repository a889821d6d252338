// Reduces per-packet MAC access delay samples to the end-of-run summary.

package sim

import (
	"fmt"
	"io"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// SummaryStats is derived from a delay sample sequence; it is recomputed on
// demand and never stored alongside the samples.
type SummaryStats struct {
	Count int           // Number of delay samples
	Mean  time.Duration // Arithmetic mean, zero for an empty sample set

	StdDev time.Duration // Sample standard deviation, zero below two samples
	Min    time.Duration
	Max    time.Duration
	P50    time.Duration
	P95    time.Duration
	P99    time.Duration
}

// Summarize reduces delay samples to count and mean. An empty sample set
// yields the zero summary rather than an error.
func Summarize(samples []time.Duration) SummaryStats {
	n := len(samples)
	if n == 0 {
		return SummaryStats{}
	}

	var sum time.Duration
	for _, d := range samples {
		sum += d
	}
	s := SummaryStats{
		Count: n,
		Mean:  sum / time.Duration(n),
	}

	// spread and percentiles work on a sorted float copy; the caller's slice is untouched
	xs := make([]float64, n)
	for i, d := range samples {
		xs[i] = float64(d)
	}
	sort.Float64s(xs)

	if n > 1 {
		s.StdDev = time.Duration(stat.StdDev(xs, nil))
	}
	s.Min = time.Duration(floats.Min(xs))
	s.Max = time.Duration(floats.Max(xs))
	s.P50 = time.Duration(stat.Quantile(0.50, stat.Empirical, xs, nil))
	s.P95 = time.Duration(stat.Quantile(0.95, stat.Empirical, xs, nil))
	s.P99 = time.Duration(stat.Quantile(0.99, stat.Empirical, xs, nil))
	return s
}

// Print displays the summary block at the end of the simulation.
// The mean is reported in seconds, the spread in microseconds.
func (s SummaryStats) Print(w io.Writer) {
	fmt.Fprintln(w, "=== MAC Access Delay Statistics ===")
	fmt.Fprintf(w, "Number of transmitted packets: %d\n", s.Count)
	fmt.Fprintf(w, "Mean MAC access delay: %g s\n", s.Mean.Seconds())
	if s.Count == 0 {
		return
	}
	fmt.Fprintf(w, "Std dev              : %.3f us\n", micros(s.StdDev))
	fmt.Fprintf(w, "Min / Max            : %.3f / %.3f us\n", micros(s.Min), micros(s.Max))
	fmt.Fprintf(w, "P50 / P95 / P99      : %.3f / %.3f / %.3f us\n", micros(s.P50), micros(s.P95), micros(s.P99))
}

func micros(d time.Duration) float64 {
	return float64(d) / float64(time.Microsecond)
}

// Package stats computes the score distribution reported by the assignment analytics.
package stats

import "sort"

// Summary is the five-number summary of a score population.
type Summary struct {
	Min           float64
	Max           float64
	Median        float64
	FirstQuartile float64
	ThirdQuartile float64
}

// Quartiles returns the five-number summary of scores using the exclusive-median method:
// for an odd count the median is left out of both halves, for an even count the halves split evenly.
// The quartiles are the medians of the lower and upper halves.
// ok is false when scores is empty. scores is not modified.
func Quartiles(scores []float64) (sum Summary, ok bool) {
	n := len(scores)
	if n == 0 {
		return Summary{}, false
	}

	sorted := make([]float64, n)
	copy(sorted, scores)
	sort.Float64s(sorted)

	half := n / 2
	lower, upper := sorted[:half], sorted[n-half:]
	if half == 0 { // a single score is its own quartiles
		lower, upper = sorted, sorted
	}

	return Summary{
		Min:           sorted[0],
		Max:           sorted[n-1],
		Median:        median(sorted),
		FirstQuartile: median(lower),
		ThirdQuartile: median(upper),
	}, true
}

// median expects a sorted, non-empty slice.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

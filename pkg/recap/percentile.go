package recap

import "math"

// Percentile ranks value against the population of active-user consumption
// counts. The scale is inverted on purpose: 0 means most active, and
// values approaching 100 mean least active. An empty population yields 0
// for every input.
func Percentile(value int, population []int) float64 {
	n := len(population)
	if n == 0 {
		return 0.0
	}
	nLE := 0
	for _, p := range population {
		if p <= value {
			nLE++
		}
	}
	rank := float64(nLE) / float64(n) * 100
	return 100 - math.Min(rank, 100)
}

// RoundedPercentile is Percentile rounded to the nearest integer, the form
// published in recap documents.
func RoundedPercentile(value int, population []int) int {
	return int(math.Round(Percentile(value, population)))
}

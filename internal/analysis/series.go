package analysis

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats summarizes a series.
type Stats struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Final  float64 `json:"final"`
}

// Describe returns the summary of data. An empty series yields zeros.
func Describe(data []float64) Stats {
	if len(data) == 0 {
		return Stats{}
	}
	s := Stats{
		Min:   floats.Min(data),
		Max:   floats.Max(data),
		Final: data[len(data)-1],
	}
	if len(data) == 1 {
		s.Mean = data[0]
		return s
	}
	s.Mean, s.StdDev = stat.MeanStdDev(data, nil)
	return s
}

// SettleTime returns the first time after which every sample stays below
// threshold. ok is false if the series never settles.
func SettleTime(times, data []float64, threshold float64) (t float64, ok bool) {
	n := min(len(times), len(data))
	idx := -1
	for i := n - 1; i >= 0; i-- {
		if data[i] >= threshold {
			break
		}
		idx = i
	}
	if idx < 0 {
		return 0, false
	}
	return times[idx], true
}

// Bounces counts the local minima of a height trace that lie within
// tolerance of floor. Consecutive samples near the floor count once.
func Bounces(heights []float64, floor, tolerance float64) int {
	n := 0
	near := false
	for _, h := range heights {
		if h-floor <= tolerance {
			if !near {
				n++
			}
			near = true
			continue
		}
		near = false
	}
	return n
}

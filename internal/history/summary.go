package history

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes occupancy over a set of samples.
type Summary struct {
	Count         int       `json:"count"`
	MeanPercent   float64   `json:"mean_percent"`
	StdDevPercent float64   `json:"stddev_percent"`
	MinPercent    float64   `json:"min_percent"`
	MaxPercent    float64   `json:"max_percent"`
	P95Percent    float64   `json:"p95_percent"`
	MeanOccupied  float64   `json:"mean_occupied"`
	PeakAt        time.Time `json:"peak_at"`
}

// Summarize computes occupancy statistics. An empty input gives the zero
// Summary.
func Summarize(samples []Sample) Summary {
	n := len(samples)
	if n == 0 {
		return Summary{}
	}

	pct := make([]float64, n)
	occ := make([]float64, n)
	for i, s := range samples {
		pct[i] = s.Percent
		occ[i] = float64(s.Ocupados)
	}

	sum := Summary{
		Count:        n,
		MeanPercent:  stat.Mean(pct, nil),
		MinPercent:   floats.Min(pct),
		MaxPercent:   floats.Max(pct),
		MeanOccupied: stat.Mean(occ, nil),
		PeakAt:       samples[floats.MaxIdx(pct)].TakenAt,
	}
	if n > 1 {
		sum.StdDevPercent = stat.StdDev(pct, nil)
	}

	sorted := make([]float64, n)
	copy(sorted, pct)
	sort.Float64s(sorted)
	sum.P95Percent = stat.Quantile(0.95, stat.Empirical, sorted, nil)

	return sum
}

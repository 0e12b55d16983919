/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: distribution.go
Description: Summary statistics of a sample: the first four moments and a fixed-width
histogram. Used to summarize pairwise distances across a generated batch.
*/

package similarity

import (
	"fmt"
	"math"
)

// HistogramBuckets is the number of histogram buckets of a Distribution
const HistogramBuckets = 50

// Bucket is one histogram bin starting at Lower
type Bucket struct {
	Lower float64 `json:"lower"`
	Count int     `json:"count"`
}

// Distribution summarizes a sample.
// Moments holds mean, variance, skewness and kurtosis in that order.
type Distribution struct {
	Name      string    `json:"name"`
	Moments   []float64 `json:"moments"`
	Histogram []Bucket  `json:"histogram"`
}

// NewDistribution computes the moments and histogram of samples
func NewDistribution(name string, samples []float64) (*Distribution, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("distribution %s: no samples", name)
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	var sum float64
	for _, x := range samples {
		sum += x
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}

	// Widen slightly so the maximum falls inside the last bucket
	spread := hi - lo
	if spread == 0 {
		spread = 1
	}
	hi += 0.001 * spread
	lo -= 0.001 * spread
	width := (hi - lo) / HistogramBuckets

	histogram := make([]Bucket, HistogramBuckets)
	for i := range histogram {
		histogram[i].Lower = lo + float64(i)*width
	}
	for _, x := range samples {
		idx := int(math.Floor((x - lo) / width))
		idx = max(0, min(idx, HistogramBuckets-1))
		histogram[idx].Count++
	}

	n := float64(len(samples))
	mean := sum / n

	var m2, m3, m4 float64
	for _, x := range samples {
		d := x - mean
		m2 += d * d
		m3 += d * d * d
		m4 += d * d * d * d
	}
	variance := m2 / n

	var skewness, kurtosis float64
	if sigma := math.Sqrt(variance); sigma > 0 {
		skewness = m3 / n / (sigma * sigma * sigma)
		kurtosis = m4 / n / (variance * variance)
	}

	return &Distribution{
		Name:      name,
		Moments:   []float64{mean, variance, skewness, kurtosis},
		Histogram: histogram,
	}, nil
}

// Mean returns the first moment
func (d *Distribution) Mean() float64 { return d.Moments[0] }

// Variance returns the second central moment
func (d *Distribution) Variance() float64 { return d.Moments[1] }

/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: similarity.go
Description: Similarity metrics over generated programs: WL-test distance between feature
vectors, plain vector distance between embeddings and recursive SimRank over trees.
*/

package similarity

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/kleascm/lang-explorer/pkg/grammar"
)

// Metric selects the vector distance
type Metric string

const (
	Euclidean Metric = "l2"
	Manhattan Metric = "l1"
)

// ParseMetric converts a configuration string into a Metric
func ParseMetric(s string) (Metric, error) {
	switch s {
	case "l2", "euclidean", "":
		return Euclidean, nil
	case "l1", "manhattan":
		return Manhattan, nil
	default:
		return "", fmt.Errorf("unknown similarity metric: %s", s)
	}
}

// WLTest compares two feature vectors as multisets. Each distinct feature contributes the
// difference between its counts in a and b.
func WLTest(a, b []uint64, metric Metric) float64 {
	counts := make(map[uint64][2]int, len(a)+len(b))
	for _, f := range a {
		c := counts[f]
		c[0]++
		counts[f] = c
	}
	for _, f := range b {
		c := counts[f]
		c[1]++
		counts[f] = c
	}

	var sum float64
	for _, c := range counts {
		diff := float64(c[0] - c[1])
		if metric == Manhattan {
			sum += math.Abs(diff)
		} else {
			sum += diff * diff
		}
	}
	if metric == Manhattan {
		return sum
	}
	return math.Sqrt(sum)
}

// Vector compares two embeddings element-wise. Extra trailing elements of the longer
// vector are ignored.
func Vector(a, b []float64, metric Metric) float64 {
	n := min(len(a), len(b))

	var sum float64
	for i := 0; i < n; i++ {
		diff := a[i] - b[i]
		if metric == Manhattan {
			sum += math.Abs(diff)
		} else {
			sum += diff * diff
		}
	}
	if metric == Manhattan {
		return sum
	}
	return math.Sqrt(sum)
}

// SimRank scores structural similarity of two trees. Equal leaves score 1; a leaf against
// anything else, or running out of depth, scores 0; otherwise the score is c times the mean
// similarity over all child pairs.
func SimRank[T grammar.Terminal, I grammar.NonTerminal](a, b *grammar.ProgramInstance[T, I], c float64, depth uint32) float64 {
	if a.Node == b.Node && a.IsLeaf() && b.IsLeaf() {
		return 1
	}
	if a.IsLeaf() || b.IsLeaf() || depth == 0 {
		return 0
	}

	var sum float64
	for _, v := range a.Children {
		for _, w := range b.Children {
			sum += SimRank(v, w, c, depth-1)
		}
	}
	return c * sum / float64(len(a.Children)*len(b.Children))
}

// Pairwise returns the WL-test distance of every unordered pair of feature vectors, in
// row-major upper-triangle order: (0,1), (0,2), ..., (1,2), ...
// workers bounds the number of rows computed concurrently; zero means unbounded.
func Pairwise(ctx context.Context, features [][]uint64, metric Metric, workers int) ([]float64, error) {
	n := len(features)
	if n < 2 {
		return nil, nil
	}

	out := make([]float64, n*(n-1)/2)
	eg, egCtx := errgroup.WithContext(ctx)
	if workers > 0 {
		eg.SetLimit(workers)
	}

	for i := 0; i < n-1; i++ {
		offset := i*n - i*(i+1)/2
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			for j := i + 1; j < n; j++ {
				out[offset+j-i-1] = WLTest(features[i], features[j], metric)
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

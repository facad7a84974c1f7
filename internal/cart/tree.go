// Package cart implements a deterministic CART decision-tree classifier
// over numeric predictors. Splits minimize Gini impurity; candidate
// thresholds are midpoints between consecutive distinct values; ties are
// broken toward the first predictor and the lowest threshold so that
// identical training data always yields an identical tree.
package cart

import (
	"math"
	"sort"

	"github.com/rotisserie/eris"
)

// Sample is one training observation: predictor values plus a class code.
// Class codes start at 1.
type Sample struct {
	Values []float64
	Class  int
}

// Options controls tree growth.
type Options struct {
	MaxDepth            int     // 0 means the default of 16
	MinSamplesSplit     int     // minimum samples to attempt a split
	MinSamplesLeaf      int     // minimum samples in each child
	MinImpurityDecrease float64 // minimum weighted impurity decrease
}

func (o Options) withDefaults() Options {
	if o.MaxDepth <= 0 {
		o.MaxDepth = 16
	}
	if o.MinSamplesSplit < 2 {
		o.MinSamplesSplit = 2
	}
	if o.MinSamplesLeaf < 1 {
		o.MinSamplesLeaf = 1
	}
	return o
}

// Node is one tree node. Internal nodes hold a single-predictor
// threshold test; values <= Threshold descend left.
type Node struct {
	Leaf      bool    `json:"leaf"`
	Class     int     `json:"class,omitempty"`
	Feature   int     `json:"feature,omitempty"`
	Threshold float64 `json:"threshold,omitempty"`
	Left      *Node   `json:"left,omitempty"`
	Right     *Node   `json:"right,omitempty"`
}

// Tree is an immutable fitted decision tree. Predictors records the
// band names, in order, that Values must follow at prediction time.
type Tree struct {
	Predictors []string `json:"predictors"`
	Root       *Node    `json:"root"`
}

// Fit grows a decision tree from the samples. Every sample must have one
// value per predictor and no NaN values; callers drop incomplete records
// before fitting. Training data with a single class yields a single-leaf
// tree.
func Fit(samples []Sample, predictors []string, opts Options) (*Tree, error) {
	if len(samples) == 0 {
		return nil, eris.New("cart: no training samples")
	}
	if len(predictors) == 0 {
		return nil, eris.New("cart: no predictors")
	}
	for i, s := range samples {
		if len(s.Values) != len(predictors) {
			return nil, eris.Errorf("cart: sample %d has %d values, want %d", i, len(s.Values), len(predictors))
		}
		if s.Class < 1 {
			return nil, eris.Errorf("cart: sample %d has invalid class %d", i, s.Class)
		}
		for j, v := range s.Values {
			if math.IsNaN(v) {
				return nil, eris.Errorf("cart: sample %d has missing value for %q", i, predictors[j])
			}
		}
	}

	opts = opts.withDefaults()
	idx := make([]int, len(samples))
	for i := range idx {
		idx[i] = i
	}
	return &Tree{
		Predictors: predictors,
		Root:       grow(samples, idx, len(predictors), opts, 0),
	}, nil
}

// Predict traverses the tree for one pixel's band values and returns the
// predicted class code. Values must follow t.Predictors.
func (t *Tree) Predict(values []float64) int {
	n := t.Root
	for !n.Leaf {
		if values[n.Feature] <= n.Threshold {
			n = n.Left
		} else {
			n = n.Right
		}
	}
	return n.Class
}

// Depth returns the depth of the tree; a single leaf has depth 0.
func (t *Tree) Depth() int {
	return depth(t.Root)
}

// Leaves returns the number of leaf nodes.
func (t *Tree) Leaves() int {
	return leaves(t.Root)
}

func depth(n *Node) int {
	if n.Leaf {
		return 0
	}
	l, r := depth(n.Left), depth(n.Right)
	if l > r {
		return l + 1
	}
	return r + 1
}

func leaves(n *Node) int {
	if n.Leaf {
		return 1
	}
	return leaves(n.Left) + leaves(n.Right)
}

// grow recursively partitions the samples indexed by idx.
func grow(samples []Sample, idx []int, nFeatures int, opts Options, d int) *Node {
	counts := classCounts(samples, idx)
	if len(counts) == 1 || d >= opts.MaxDepth || len(idx) < opts.MinSamplesSplit {
		return &Node{Leaf: true, Class: majority(counts)}
	}

	feature, threshold, gain, ok := bestSplit(samples, idx, nFeatures, opts)
	if !ok || gain < opts.MinImpurityDecrease || gain <= 0 {
		return &Node{Leaf: true, Class: majority(counts)}
	}

	var left, right []int
	for _, i := range idx {
		if samples[i].Values[feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	return &Node{
		Feature:   feature,
		Threshold: threshold,
		Left:      grow(samples, left, nFeatures, opts, d+1),
		Right:     grow(samples, right, nFeatures, opts, d+1),
	}
}

// bestSplit scans every predictor in order and every midpoint threshold
// in ascending order, keeping the first split with the strictly largest
// impurity decrease.
func bestSplit(samples []Sample, idx []int, nFeatures int, opts Options) (feature int, threshold, gain float64, ok bool) {
	parent := gini(classCounts(samples, idx), len(idx))
	total := float64(len(idx))

	for f := 0; f < nFeatures; f++ {
		order := sortedByFeature(samples, idx, f)

		leftCounts := map[int]int{}
		rightCounts := classCounts(samples, idx)
		nLeft := 0

		for k := 0; k < len(order)-1; k++ {
			i := order[k]
			c := samples[i].Class
			leftCounts[c]++
			rightCounts[c]--
			if rightCounts[c] == 0 {
				delete(rightCounts, c)
			}
			nLeft++

			v, next := samples[i].Values[f], samples[order[k+1]].Values[f]
			if v == next {
				continue
			}
			if nLeft < opts.MinSamplesLeaf || len(order)-nLeft < opts.MinSamplesLeaf {
				continue
			}

			th := v + (next-v)/2
			weighted := (float64(nLeft)/total)*gini(leftCounts, nLeft) +
				(float64(len(order)-nLeft)/total)*gini(rightCounts, len(order)-nLeft)
			g := parent - weighted
			if !ok || g > gain {
				feature, threshold, gain, ok = f, th, g, true
			}
		}
	}
	return feature, threshold, gain, ok
}

// sortedByFeature returns idx sorted ascending by the feature value,
// with the original index as a deterministic tie-breaker.
func sortedByFeature(samples []Sample, idx []int, f int) []int {
	order := make([]int, len(idx))
	copy(order, idx)
	sort.Slice(order, func(a, b int) bool {
		va, vb := samples[order[a]].Values[f], samples[order[b]].Values[f]
		if va != vb {
			return va < vb
		}
		return order[a] < order[b]
	})
	return order
}

func classCounts(samples []Sample, idx []int) map[int]int {
	counts := make(map[int]int)
	for _, i := range idx {
		counts[samples[i].Class]++
	}
	return counts
}

// majority returns the most frequent class; the lowest code wins ties.
func majority(counts map[int]int) int {
	best, bestN := 0, -1
	for c, n := range counts {
		if n > bestN || (n == bestN && c < best) {
			best, bestN = c, n
		}
	}
	return best
}

// gini computes the Gini impurity of a class distribution.
func gini(counts map[int]int, n int) float64 {
	if n == 0 {
		return 0
	}
	sum := 0.0
	for _, c := range counts {
		p := float64(c) / float64(n)
		sum += p * p
	}
	return 1 - sum
}

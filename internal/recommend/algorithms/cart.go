// Fundwise - Investor Risk Profiling and Fund Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fundwise

package algorithms

import (
	"math"
	"math/rand"
	"sort"

	"github.com/tomtom215/fundwise/internal/profile"
)

// minImpurityDecrease is the smallest Gini improvement accepted for a split.
const minImpurityDecrease = 1e-12

type classCounts [profile.NumCategories]int

// treeNode is one node of a flattened CART tree. Leaves have Left == -1.
// Dist holds the class fractions of the training samples that reached the node.
type treeNode struct {
	Feature   int
	Threshold float64
	Left      int32
	Right     int32
	Dist      [profile.NumCategories]float64
}

// cartTree is a binary classification tree stored as a node slice rooted at 0.
type cartTree struct {
	Nodes []treeNode
}

// predict returns the class distribution of the leaf x falls into.
func (t *cartTree) predict(x []float64) [profile.NumCategories]float64 {
	n := &t.Nodes[0]
	for n.Left >= 0 {
		if x[n.Feature] <= n.Threshold {
			n = &t.Nodes[n.Left]
		} else {
			n = &t.Nodes[n.Right]
		}
	}
	return n.Dist
}

func (t *cartTree) depth() int {
	var walk func(i int32) int
	walk = func(i int32) int {
		n := t.Nodes[i]
		if n.Left < 0 {
			return 0
		}
		return 1 + max(walk(n.Left), walk(n.Right))
	}
	if len(t.Nodes) == 0 {
		return 0
	}
	return walk(0)
}

// growParams are the stopping and sampling rules for one tree.
type growParams struct {
	maxDepth    int
	minSplit    int
	minLeaf     int
	maxFeatures int
}

type grower struct {
	x      [][]float64
	y      []int
	params growParams
	rng    *rand.Rand
	nodes  []treeNode
}

// growTree fits a CART tree on the rows of x selected by idx (duplicates allowed).
func growTree(x [][]float64, y []int, idx []int, params growParams, rng *rand.Rand) cartTree {
	g := &grower{x: x, y: y, params: params, rng: rng}
	g.build(idx, 0)
	return cartTree{Nodes: g.nodes}
}

func (g *grower) build(idx []int, depth int) int32 {
	counts := g.count(idx)
	id := int32(len(g.nodes))
	g.nodes = append(g.nodes, treeNode{Feature: -1, Left: -1, Right: -1, Dist: fractions(counts, len(idx))})

	if g.stop(counts, len(idx), depth) {
		return id
	}
	feature, threshold, ok := g.bestSplit(idx, counts)
	if !ok {
		return id
	}

	left, right := partition(g.x, idx, feature, threshold)
	l := g.build(left, depth+1)
	r := g.build(right, depth+1)

	g.nodes[id].Feature = feature
	g.nodes[id].Threshold = threshold
	g.nodes[id].Left = l
	g.nodes[id].Right = r
	return id
}

func (g *grower) count(idx []int) classCounts {
	var c classCounts
	for _, i := range idx {
		c[g.y[i]]++
	}
	return c
}

func (g *grower) stop(counts classCounts, n, depth int) bool {
	if g.params.maxDepth > 0 && depth >= g.params.maxDepth {
		return true
	}
	if n < g.params.minSplit || n < 2*g.params.minLeaf {
		return true
	}
	nonEmpty := 0
	for _, c := range counts {
		if c > 0 {
			nonEmpty++
		}
	}
	return nonEmpty <= 1
}

// bestSplit searches a random subset of maxFeatures features for the
// threshold with the largest Gini decrease. Constant features do not count
// toward the subset, so a split is still found when the first draws are
// uninformative.
func (g *grower) bestSplit(idx []int, parent classCounts) (int, float64, bool) {
	n := len(idx)
	parentGini := gini(parent, n)

	bestFeature, bestThreshold := -1, 0.0
	bestGain := minImpurityDecrease

	sorted := make([]int, n)
	tried := 0
	for _, f := range g.rng.Perm(profile.NumFeatures) {
		if tried >= g.params.maxFeatures && bestFeature >= 0 {
			break
		}

		copy(sorted, idx)
		sort.Slice(sorted, func(a, b int) bool { return g.x[sorted[a]][f] < g.x[sorted[b]][f] })
		if g.x[sorted[0]][f] == g.x[sorted[n-1]][f] {
			continue
		}
		tried++

		var left classCounts
		right := parent
		for i := 0; i < n-1; i++ {
			c := g.y[sorted[i]]
			left[c]++
			right[c]--

			v, next := g.x[sorted[i]][f], g.x[sorted[i+1]][f]
			if v == next {
				continue
			}
			nl, nr := i+1, n-i-1
			if nl < g.params.minLeaf || nr < g.params.minLeaf {
				continue
			}

			impurity := (float64(nl)*gini(left, nl) + float64(nr)*gini(right, nr)) / float64(n)
			if gain := parentGini - impurity; gain > bestGain {
				bestGain = gain
				bestFeature = f
				bestThreshold = v + (next-v)/2
			}
		}
	}
	return bestFeature, bestThreshold, bestFeature >= 0
}

func partition(x [][]float64, idx []int, feature int, threshold float64) (left, right []int) {
	for _, i := range idx {
		if x[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	return left, right
}

func gini(counts classCounts, n int) float64 {
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

func fractions(counts classCounts, n int) [profile.NumCategories]float64 {
	var out [profile.NumCategories]float64
	if n == 0 {
		return out
	}
	for i, c := range counts {
		out[i] = float64(c) / float64(n)
	}
	return out
}

// sqrtFeatures is the default feature subset size for a forest.
func sqrtFeatures() int {
	return max(1, int(math.Sqrt(float64(profile.NumFeatures))))
}

// bootstrapSample draws n row indices with replacement.
func bootstrapSample(n int, rng *rand.Rand) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = rng.Intn(n)
	}
	return idx
}

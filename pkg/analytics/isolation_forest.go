package analytics

import (
	"math"
	"math/rand"
)

const eulerMascheroni = 0.5772156649015329

type isolationNode struct {
	feature int
	split   float64
	left    *isolationNode
	right   *isolationNode
	size    int
}

// IsolationForest scores how easily a point is separated from the samples it was fitted on
type IsolationForest struct {
	trees      []*isolationNode
	sampleSize int
}

// NewIsolationForest fits trees on samples, each tree on a random subsample of at most sampleSize points.
// The same seed yields the same forest.
func NewIsolationForest(samples [][]float64, trees int, sampleSize int, seed int64) *IsolationForest {
	random := rand.New(rand.NewSource(seed))

	if sampleSize > len(samples) {
		sampleSize = len(samples)
	}

	heightLimit := int(math.Ceil(math.Log2(math.Max(float64(sampleSize), 2))))
	forest := IsolationForest{sampleSize: sampleSize}

	for t := 0; t < trees; t++ {
		permutation := random.Perm(len(samples))
		subsample := make([][]float64, sampleSize)
		for i := 0; i < sampleSize; i++ {
			subsample[i] = samples[permutation[i]]
		}

		forest.trees = append(forest.trees, buildIsolationTree(subsample, 0, heightLimit, random))
	}

	return &forest
}

func buildIsolationTree(samples [][]float64, height int, heightLimit int, random *rand.Rand) *isolationNode {
	if height >= heightLimit || len(samples) <= 1 {
		return &isolationNode{size: len(samples)}
	}

	var splittable []int
	for feature := range samples[0] {
		low, high := featureRange(samples, feature)
		if high > low {
			splittable = append(splittable, feature)
		}
	}

	if len(splittable) == 0 {
		return &isolationNode{size: len(samples)}
	}

	feature := splittable[random.Intn(len(splittable))]
	low, high := featureRange(samples, feature)
	split := low + random.Float64()*(high-low)

	var left, right [][]float64
	for _, sample := range samples {
		if sample[feature] < split {
			left = append(left, sample)
		} else {
			right = append(right, sample)
		}
	}

	return &isolationNode{
		feature: feature,
		split:   split,
		left:    buildIsolationTree(left, height+1, heightLimit, random),
		right:   buildIsolationTree(right, height+1, heightLimit, random),
		size:    len(samples),
	}
}

func featureRange(samples [][]float64, feature int) (float64, float64) {
	low, high := math.Inf(1), math.Inf(-1)
	for _, sample := range samples {
		low = math.Min(low, sample[feature])
		high = math.Max(high, sample[feature])
	}
	return low, high
}

// Score returns the anomaly score of point in (0, 1]. Scores near 1 indicate anomalies, scores well below
// 0.5 normal points.
func (f *IsolationForest) Score(point []float64) float64 {
	if len(f.trees) == 0 || f.sampleSize < 2 {
		return 0
	}

	total := 0.0
	for _, tree := range f.trees {
		total += pathLength(tree, point, 0)
	}

	mean := total / float64(len(f.trees))
	return math.Pow(2, -mean/averagePathLength(f.sampleSize))
}

func pathLength(node *isolationNode, point []float64, depth int) float64 {
	if node.left == nil || node.right == nil {
		return float64(depth) + averagePathLength(node.size)
	}

	if point[node.feature] < node.split {
		return pathLength(node.left, point, depth+1)
	}
	return pathLength(node.right, point, depth+1)
}

// averagePathLength is the average path length of an unsuccessful search in a binary search tree of n nodes
func averagePathLength(n int) float64 {
	switch {
	case n <= 1:
		return 0
	case n == 2:
		return 1
	default:
		harmonic := math.Log(float64(n-1)) + eulerMascheroni
		return 2*harmonic - 2*float64(n-1)/float64(n)
	}
}

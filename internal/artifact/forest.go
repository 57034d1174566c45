package artifact

import (
	"encoding/json"
	"fmt"
)

// forestFormat is the artifact format identifier the loader accepts.
const forestFormat = "gdp-scenario-forest/v1"

// treeNode is one node of a serialized regression tree. Internal nodes carry
// a feature index and split threshold; leaves have Feature == -1 and carry
// the predicted value.
type treeNode struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     float64 `json:"value"`
}

// regressionTree is a flat array-of-nodes encoding; node 0 is the root.
type regressionTree struct {
	Nodes []treeNode `json:"nodes"`
}

// forestArtifact is the on-disk model format.
type forestArtifact struct {
	Format    string           `json:"format"`
	NFeatures int              `json:"n_features"`
	Trees     []regressionTree `json:"trees"`
}

// Forest is a pre-trained random-forest regressor. The prediction is the
// arithmetic mean of the individual tree outputs. It holds no mutable state;
// Predict is safe for concurrent use.
type Forest struct {
	nFeatures int
	trees     []regressionTree
}

// LoadForest reads and validates a forest model artifact.
func LoadForest(path string) (*Forest, error) {
	data, err := readArtifactFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model artifact: %w", err)
	}

	var art forestArtifact
	if err := json.Unmarshal(data, &art); err != nil {
		return nil, fmt.Errorf("parsing model artifact %s: %w", path, err)
	}
	if art.Format != forestFormat {
		return nil, fmt.Errorf("model artifact %s: unsupported format %q", path, art.Format)
	}
	if art.NFeatures <= 0 {
		return nil, fmt.Errorf("model artifact %s: invalid n_features %d", path, art.NFeatures)
	}
	if len(art.Trees) == 0 {
		return nil, fmt.Errorf("model artifact %s: no trees", path)
	}
	for ti, tree := range art.Trees {
		if err := validateTree(tree, art.NFeatures); err != nil {
			return nil, fmt.Errorf("model artifact %s: tree %d: %w", path, ti, err)
		}
	}

	return &Forest{nFeatures: art.NFeatures, trees: art.Trees}, nil
}

// validateTree checks node indices and feature references so Predict can
// walk trees without bounds checks failing mid-request.
func validateTree(tree regressionTree, nFeatures int) error {
	if len(tree.Nodes) == 0 {
		return fmt.Errorf("empty tree")
	}
	for i, n := range tree.Nodes {
		if n.Feature < 0 {
			continue // leaf
		}
		if n.Feature >= nFeatures {
			return fmt.Errorf("node %d references feature %d (have %d)", i, n.Feature, nFeatures)
		}
		if n.Left < 0 || n.Left >= len(tree.Nodes) || n.Right < 0 || n.Right >= len(tree.Nodes) {
			return fmt.Errorf("node %d has out-of-range child", i)
		}
		if n.Left == i || n.Right == i {
			return fmt.Errorf("node %d is its own child", i)
		}
	}
	return nil
}

// NumFeatures returns the feature vector length the model was trained with.
func (f *Forest) NumFeatures() int {
	return f.nFeatures
}

// Predict runs the feature vector through every tree and returns the mean of
// the tree outputs. The only error condition is a shape mismatch; the caller
// is expected to assemble the vector in the trained feature order.
func (f *Forest) Predict(features []float64) (float64, error) {
	if len(features) != f.nFeatures {
		return 0, fmt.Errorf("feature vector has %d values, model expects %d", len(features), f.nFeatures)
	}

	sum := 0.0
	for _, tree := range f.trees {
		sum += evalTree(tree, features)
	}
	return sum / float64(len(f.trees)), nil
}

// evalTree walks one tree from the root to a leaf. The split convention is
// x[feature] <= threshold goes left.
func evalTree(tree regressionTree, x []float64) float64 {
	i := 0
	// Each step descends one level; len(Nodes) iterations bounds the walk
	// even if a malformed tree slipped past validation.
	for steps := 0; steps <= len(tree.Nodes); steps++ {
		n := tree.Nodes[i]
		if n.Feature < 0 {
			return n.Value
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
	return tree.Nodes[i].Value
}

package ml

import (
	"encoding/json"
	"errors"
	"fmt"
)

// DecisionTree is a fitted binary classification tree stored as a flat node
// array. Internal nodes route on feature <= threshold; leaves carry the class
// counts observed at fit time, which give the churn probability.
type DecisionTree struct {
	Nodes []TreeNode `json:"nodes"`
}

type TreeNode struct {
	FeatureIdx int     `json:"feature_idx"`
	Threshold  float64 `json:"threshold"`
	LeftChild  int     `json:"left_child"`
	RightChild int     `json:"right_child"`
	ClassLabel int     `json:"class_label"`
	IsLeaf     bool    `json:"is_leaf"`
	Negatives  int     `json:"negatives"`
	Positives  int     `json:"positives"`
}

func (dt *DecisionTree) Predict(vector []float64) (int, error) {
	node, err := dt.leaf(vector)
	if err != nil {
		return 0, err
	}
	return node.ClassLabel, nil
}

func (dt *DecisionTree) PredictProba(vector []float64) (float64, error) {
	node, err := dt.leaf(vector)
	if err != nil {
		return 0, err
	}
	total := node.Negatives + node.Positives
	if total == 0 {
		// Leaf without recorded counts, fall back to its hard label.
		return float64(node.ClassLabel), nil
	}
	return float64(node.Positives) / float64(total), nil
}

func (dt *DecisionTree) leaf(vector []float64) (TreeNode, error) {
	if len(dt.Nodes) == 0 {
		return TreeNode{}, errors.New("tree has no nodes")
	}
	idx := 0
	for {
		node := dt.Nodes[idx]
		if node.IsLeaf {
			return node, nil
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= len(vector) {
			return TreeNode{}, fmt.Errorf("tree routes on feature %d, vector has %d columns", node.FeatureIdx, len(vector))
		}
		if vector[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
		if idx < 0 || idx >= len(dt.Nodes) {
			return TreeNode{}, errors.New("invalid tree state")
		}
	}
}

func decodeDecisionTree(payload json.RawMessage) (*DecisionTree, error) {
	var nodes []TreeNode
	if err := json.Unmarshal(payload, &nodes); err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, errors.New("decision tree payload is empty")
	}
	return &DecisionTree{Nodes: nodes}, nil
}

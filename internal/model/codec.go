package model

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"graphtrust/internal/features"
	"graphtrust/pkg/platform/sentinel"
)

const artifactFormat = 1

type artifact struct {
	Format     int          `json:"format"`
	Dimensions int          `json:"dimensions"`
	Trees      [][]treeNode `json:"trees"`
}

// Encode serializes a forest into an opaque artifact.
func Encode(f *Forest) ([]byte, error) {
	a := artifact{Format: artifactFormat, Dimensions: features.Dimensions}
	for _, t := range f.trees {
		a.Trees = append(a.Trees, t.nodes)
	}
	return json.Marshal(a)
}

// Decode parses an artifact produced by Encode. Structural problems are
// reported as sentinel.ErrCorrupt.
func Decode(data []byte) (*Forest, error) {
	var a artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("%w: decode artifact: %v", sentinel.ErrCorrupt, err)
	}
	if a.Format != artifactFormat {
		return nil, fmt.Errorf("%w: unsupported artifact format %d", sentinel.ErrCorrupt, a.Format)
	}
	if a.Dimensions != features.Dimensions {
		return nil, fmt.Errorf("%w: artifact has %d dimensions, want %d", sentinel.ErrCorrupt, a.Dimensions, features.Dimensions)
	}
	if len(a.Trees) == 0 {
		return nil, fmt.Errorf("%w: artifact has no trees", sentinel.ErrCorrupt)
	}
	f := &Forest{trees: make([]*tree, 0, len(a.Trees))}
	for i, nodes := range a.Trees {
		if err := validateTree(nodes); err != nil {
			return nil, fmt.Errorf("%w: tree %d: %v", sentinel.ErrCorrupt, i, err)
		}
		f.trees = append(f.trees, &tree{nodes: nodes})
	}
	return f, nil
}

// validateTree guarantees predict terminates and never indexes out of range.
func validateTree(nodes []treeNode) error {
	if len(nodes) == 0 {
		return fmt.Errorf("empty tree")
	}
	for i, n := range nodes {
		if n.leaf() {
			if n.Right >= 0 {
				return fmt.Errorf("node %d: half leaf", i)
			}
			continue
		}
		if n.Feature < 0 || n.Feature >= features.Dimensions {
			return fmt.Errorf("node %d: feature %d out of range", i, n.Feature)
		}
		if n.Left <= i || n.Right <= i || n.Left >= len(nodes) || n.Right >= len(nodes) {
			return fmt.Errorf("node %d: bad child index", i)
		}
	}
	return nil
}

// Checksum returns the hex SHA-256 of an artifact.
func Checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Package features turns a user's graph neighborhood into the numeric vector
// consumed by the trust model.
package features

import (
	"fmt"
	"math"
	"strconv"

	"graphtrust/internal/graph"
)

// Dimensions is the fixed length of every feature vector.
const Dimensions = 3

// Vector is the fixed-order feature set for one node.
type Vector struct {
	Degree       int `json:"degree"`
	DeviceLinks  int `json:"device_links"`
	FlaggedLinks int `json:"flagged_links"`
}

// Values returns the vector in model input order.
func (v Vector) Values() []float64 {
	return []float64{float64(v.Degree), float64(v.DeviceLinks), float64(v.FlaggedLinks)}
}

// FromValues rebuilds a vector from model input order. Missing trailing
// values and NaN read as zero. Everything else is truncated and clamped to
// [0, math.MaxInt32].
func FromValues(values []float64) Vector {
	at := func(i int) int {
		if i >= len(values) || math.IsNaN(values[i]) || values[i] < 0 {
			return 0
		}
		if values[i] >= math.MaxInt32 {
			return math.MaxInt32
		}
		return int(values[i])
	}
	return Vector{Degree: at(0), DeviceLinks: at(1), FlaggedLinks: at(2)}
}

// ParseCount parses one feature value given as text. Only finite whole
// numbers in [0, math.MaxInt32] are accepted.
func ParseCount(raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) || v < 0 || v > math.MaxInt32 {
		return 0, fmt.Errorf("%q is not a whole count between 0 and %d", raw, math.MaxInt32)
	}
	return v, nil
}

// IsZero reports whether the vector carries no behavioral history.
func (v Vector) IsZero() bool {
	return v == Vector{}
}

// Graph is the read side of the relationship graph used for extraction.
type Graph interface {
	Neighborhood(id graph.NodeID) ([]graph.Neighbor, bool)
}

// Extract computes the feature vector for a user. Unknown users yield the zero
// vector, which is a valid model input.
func Extract(g Graph, userID string) Vector {
	neighbors, ok := g.Neighborhood(graph.UserNode(userID))
	if !ok {
		return Vector{}
	}
	v := Vector{Degree: len(neighbors)}
	for _, nb := range neighbors {
		switch nb.Kind {
		case graph.KindDevice:
			v.DeviceLinks++
		case graph.KindFlaggedActor:
			v.FlaggedLinks++
		}
	}
	return v
}

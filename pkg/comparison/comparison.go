// Package comparison defines the weighted similarity contract shared by
// every structured value in the system (terms, names, addresses, entities).
package comparison

// Comparable is implemented by every structured value that can be scored
// against another value of the same variant. Scores are in [0, 1] where 1
// is an exact match. Implementations must be deterministic and symmetric:
// a.CompareTo(b) == b.CompareTo(a). A value compared against a different
// variant resolves to 0, never panics.
type Comparable interface {
	CompareTo(other Comparable) float64
}

// ComponentProvider exposes named sub-components for composite scoring.
// A nil return means the component is not populated on this value.
type ComponentProvider interface {
	Component(name string) Comparable
}

// WeightedComparable is a composite value that declares its own component
// weight map. Weights express relative importance and need not sum to 1.
type WeightedComparable interface {
	Comparable
	ComponentProvider
	ComparisonWeights() map[string]float64
}

// Weighted computes the composite similarity between two values using the
// weight map declared by a. The result is normalized by the sum of weights
// for components present on BOTH operands, so partial records are not
// penalized relative to complete ones: a component missing from either
// side contributes neither score nor weight. Returns 0 when no component
// is shared.
func Weighted(a, b WeightedComparable) float64 {
	return WeightedWith(a, b, a.ComparisonWeights())
}

// WeightedWith is Weighted with an explicit weight map, for callers that
// select weights per comparison pair rather than per value type.
func WeightedWith(a, b ComponentProvider, weights map[string]float64) float64 {
	var weightedSum float64
	var totalWeight float64

	for name, weight := range weights {
		if weight <= 0 {
			continue
		}
		ca := a.Component(name)
		cb := b.Component(name)
		if ca == nil || cb == nil {
			continue
		}
		weightedSum += weight * ca.CompareTo(cb)
		totalWeight += weight
	}

	if totalWeight == 0 {
		return 0
	}
	return weightedSum / totalWeight
}

// WeightedDetail is WeightedWith plus the per-component scores that made
// up the composite, for audit trails and review tooling.
func WeightedDetail(a, b ComponentProvider, weights map[string]float64) (float64, map[string]float64) {
	var weightedSum float64
	var totalWeight float64
	components := make(map[string]float64, len(weights))

	for name, weight := range weights {
		if weight <= 0 {
			continue
		}
		ca := a.Component(name)
		cb := b.Component(name)
		if ca == nil || cb == nil {
			continue
		}
		score := ca.CompareTo(cb)
		components[name] = score
		weightedSum += weight * score
		totalWeight += weight
	}

	if totalWeight == 0 {
		return 0, components
	}
	return weightedSum / totalWeight, components
}

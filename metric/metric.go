package metric

import (
	"fmt"
	"math"
)

// Metric evaluates the distance between two points of equal dimension.
//
// Implementations must be symmetric and non-negative. Tree bounds additionally
// rely on the triangle inequality.
type Metric interface {
	Distance(a, b []float64) float64
}

// Type identifies a built-in metric.
type Type int

const (
	TypeEuclidean Type = iota
	TypeManhattan
	TypeChebyshev
)

func (t Type) String() string {
	switch t {
	case TypeEuclidean:
		return "Euclidean"
	case TypeManhattan:
		return "Manhattan"
	case TypeChebyshev:
		return "Chebyshev"
	default:
		return fmt.Sprintf("Unknown(%d)", t)
	}
}

// ParseType maps a case-sensitive lower-case name ("euclidean", "manhattan",
// "chebyshev") to a Type.
func ParseType(name string) (Type, error) {
	switch name {
	case "", "euclidean", "l2":
		return TypeEuclidean, nil
	case "manhattan", "l1":
		return TypeManhattan, nil
	case "chebyshev", "linf":
		return TypeChebyshev, nil
	default:
		return 0, fmt.Errorf("unsupported metric: %q", name)
	}
}

// Provider returns the metric for the given type.
func Provider(t Type) (Metric, error) {
	switch t {
	case TypeEuclidean:
		return Euclidean{}, nil
	case TypeManhattan:
		return Manhattan{}, nil
	case TypeChebyshev:
		return Chebyshev{}, nil
	default:
		return nil, fmt.Errorf("unsupported metric: %v", t)
	}
}

// Euclidean is the L2 distance.
type Euclidean struct{}

// Distance implements Metric.
func (Euclidean) Distance(a, b []float64) float64 {
	return math.Sqrt(SquaredL2(a, b))
}

// Manhattan is the L1 distance.
type Manhattan struct{}

// Distance implements Metric.
func (Manhattan) Distance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += math.Abs(a[i] - b[i])
	}
	return sum
}

// Chebyshev is the L-infinity distance.
type Chebyshev struct{}

// Distance implements Metric.
func (Chebyshev) Distance(a, b []float64) float64 {
	var m float64
	for i := range a {
		if d := math.Abs(a[i] - b[i]); d > m {
			m = d
		}
	}
	return m
}

// Minkowski is the Lp distance for P >= 1.
type Minkowski struct {
	P float64
}

// Distance implements Metric.
func (m Minkowski) Distance(a, b []float64) float64 {
	switch m.P {
	case 1:
		return Manhattan{}.Distance(a, b)
	case 2:
		return Euclidean{}.Distance(a, b)
	}
	if math.IsInf(m.P, 1) {
		return Chebyshev{}.Distance(a, b)
	}
	var sum float64
	for i := range a {
		sum += math.Pow(math.Abs(a[i]-b[i]), m.P)
	}
	return math.Pow(sum, 1/m.P)
}

// SquaredL2 returns the squared Euclidean distance.
// Assumes vectors are the same length (caller's responsibility).
func SquaredL2(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// Norm returns the distance of v from the origin under m.
// KD-tree bounds use it on per-dimension gap vectors, which is valid for
// every metric in this package since each is monotone in every coordinate.
func Norm(m Metric, v []float64) float64 {
	switch m.(type) {
	case Euclidean:
		var sum float64
		for _, x := range v {
			sum += x * x
		}
		return math.Sqrt(sum)
	}
	zero := make([]float64, len(v))
	return m.Distance(v, zero)
}

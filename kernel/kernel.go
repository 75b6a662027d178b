package kernel

import (
	"fmt"
	"math"
)

// Kernel maps a distance to a density contribution.
//
// Evaluate must be non-increasing in distance for pruning bounds to be valid.
// Bandwidth reports the kernel's scale parameter; ok is false for kernels
// that have none.
type Kernel interface {
	Evaluate(distance float64) float64
	Bandwidth() (h float64, ok bool)
}

// Normalizer is implemented by kernels whose integral over R^dim is known.
// The returned factor turns a kernel sum into a density (before dividing by
// the number of reference points).
type Normalizer interface {
	Normalizer(dim int) float64
}

// Gaussian is exp(-d²/(2h²)).
type Gaussian struct {
	H float64
}

// Evaluate implements Kernel.
func (k Gaussian) Evaluate(d float64) float64 {
	if k.H <= 0 {
		return pointMass(d)
	}
	return math.Exp(-d * d / (2 * k.H * k.H))
}

// Bandwidth implements Kernel.
func (k Gaussian) Bandwidth() (float64, bool) { return k.H, true }

// Normalizer implements Normalizer.
func (k Gaussian) Normalizer(dim int) float64 {
	return 1 / math.Pow(math.Sqrt(2*math.Pi)*k.H, float64(dim))
}

// Epanechnikov is max(0, 1 - d²/h²).
type Epanechnikov struct {
	H float64
}

// Evaluate implements Kernel.
func (k Epanechnikov) Evaluate(d float64) float64 {
	if k.H <= 0 {
		return pointMass(d)
	}
	return math.Max(0, 1-(d*d)/(k.H*k.H))
}

// Bandwidth implements Kernel.
func (k Epanechnikov) Bandwidth() (float64, bool) { return k.H, true }

// Normalizer implements Normalizer.
func (k Epanechnikov) Normalizer(dim int) float64 {
	return float64(dim+2) / (2 * ballVolume(dim, k.H))
}

// Laplacian is exp(-d/h).
type Laplacian struct {
	H float64
}

// Evaluate implements Kernel.
func (k Laplacian) Evaluate(d float64) float64 {
	if k.H <= 0 {
		return pointMass(d)
	}
	return math.Exp(-d / k.H)
}

// Bandwidth implements Kernel.
func (k Laplacian) Bandwidth() (float64, bool) { return k.H, true }

// Normalizer implements Normalizer.
func (k Laplacian) Normalizer(dim int) float64 {
	return 1 / (ballVolume(dim, k.H) * math.Gamma(float64(dim)+1))
}

// Spherical is 1 inside the ball of radius h and 0 outside.
type Spherical struct {
	H float64
}

// Evaluate implements Kernel.
func (k Spherical) Evaluate(d float64) float64 {
	if d <= k.H {
		return 1
	}
	return 0
}

// Bandwidth implements Kernel.
func (k Spherical) Bandwidth() (float64, bool) { return k.H, true }

// Normalizer implements Normalizer.
func (k Spherical) Normalizer(dim int) float64 {
	return 1 / ballVolume(dim, k.H)
}

// Triangular is max(0, 1 - d/h).
type Triangular struct {
	H float64
}

// Evaluate implements Kernel.
func (k Triangular) Evaluate(d float64) float64 {
	if k.H <= 0 {
		return pointMass(d)
	}
	return math.Max(0, 1-d/k.H)
}

// Bandwidth implements Kernel.
func (k Triangular) Bandwidth() (float64, bool) { return k.H, true }

// Normalizer implements Normalizer.
func (k Triangular) Normalizer(dim int) float64 {
	return float64(dim+1) / ballVolume(dim, k.H)
}

// Func adapts a plain function to Kernel. It exposes no bandwidth.
type Func func(distance float64) float64

// Evaluate implements Kernel.
func (f Func) Evaluate(d float64) float64 { return f(d) }

// Bandwidth implements Kernel.
func (Func) Bandwidth() (float64, bool) { return 0, false }

// New returns the named kernel ("gaussian", "epanechnikov", "laplacian",
// "spherical", "triangular") with bandwidth h.
func New(name string, h float64) (Kernel, error) {
	if math.IsNaN(h) || math.IsInf(h, 0) || h < 0 {
		return nil, fmt.Errorf("invalid bandwidth: %v", h)
	}

	switch name {
	case "", "gaussian":
		return Gaussian{H: h}, nil
	case "epanechnikov":
		return Epanechnikov{H: h}, nil
	case "laplacian":
		return Laplacian{H: h}, nil
	case "spherical":
		return Spherical{H: h}, nil
	case "triangular":
		return Triangular{H: h}, nil
	default:
		return nil, fmt.Errorf("unsupported kernel: %q", name)
	}
}

// A zero bandwidth degenerates to a point mass at distance zero.
func pointMass(d float64) float64 {
	if d == 0 {
		return 1
	}
	return 0
}

// ballVolume is the volume of the dim-dimensional ball of radius r.
func ballVolume(dim int, r float64) float64 {
	n := float64(dim)
	return math.Pow(math.Pi, n/2) / math.Gamma(n/2+1) * math.Pow(r, n)
}

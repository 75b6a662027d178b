package kde

import "math"

// MonteCarloConfig controls sampled estimates of large reference nodes.
type MonteCarloConfig struct {
	Enabled bool
	// SuccessProbability is the probability that every sampled estimate of a
	// query stays within the relative error bound. Must lie in [0, 1).
	SuccessProbability float64
	// InitialSampleSize is the number of reference points drawn before the
	// sample size is adapted to the observed variance.
	InitialSampleSize int
	// EntryCoef: sampling is attempted only on nodes holding at least
	// EntryCoef*InitialSampleSize points.
	EntryCoef float64
	// BreakCoef: sampling gives up once the required sample reaches
	// BreakCoef times the node size.
	BreakCoef float64
}

// Config parameterizes a Rules value.
type Config struct {
	RelError float64
	AbsError float64
	// SameSet marks monochromatic evaluation: query and reference are the
	// same point set with the same indices.
	SameSet bool
	// IncludeSelf counts a point's own contribution in same-set mode.
	IncludeSelf bool
	// Seed feeds the Monte Carlo random source.
	Seed       uint64
	MonteCarlo MonteCarloConfig
}

// DefaultMonteCarloConfig returns the sampling defaults. Sampling is disabled.
func DefaultMonteCarloConfig() MonteCarloConfig {
	return MonteCarloConfig{
		Enabled:            false,
		SuccessProbability: 0.95,
		InitialSampleSize:  100,
		EntryCoef:          3,
		BreakCoef:          0.4,
	}
}

// DefaultConfig returns a 5% relative error budget without sampling.
func DefaultConfig() Config {
	return Config{
		RelError:   0.05,
		MonteCarlo: DefaultMonteCarloConfig(),
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if !finiteNonNegative(c.RelError) {
		return invalid("relative error", "%v is not a finite non-negative number", c.RelError)
	}
	if !finiteNonNegative(c.AbsError) {
		return invalid("absolute error", "%v is not a finite non-negative number", c.AbsError)
	}
	if c.IncludeSelf && !c.SameSet {
		return invalid("include self", "only meaningful in same-set mode")
	}

	mc := c.MonteCarlo
	if !mc.Enabled {
		return nil
	}
	if !(mc.SuccessProbability >= 0 && mc.SuccessProbability < 1) {
		return invalid("success probability", "%v is outside [0, 1)", mc.SuccessProbability)
	}
	if mc.InitialSampleSize < 1 {
		return invalid("initial sample size", "%d must be positive", mc.InitialSampleSize)
	}
	if !(mc.EntryCoef >= 1) || math.IsInf(mc.EntryCoef, 0) {
		return invalid("entry coefficient", "%v must be a finite number >= 1", mc.EntryCoef)
	}
	if !(mc.BreakCoef > 0 && mc.BreakCoef <= 1) {
		return invalid("break coefficient", "%v is outside (0, 1]", mc.BreakCoef)
	}
	return nil
}

// FailureBudget is the per-query failure probability an Accumulator starts with.
func (c Config) FailureBudget() float64 {
	if !c.MonteCarlo.Enabled {
		return 0
	}
	return 1 - c.MonteCarlo.SuccessProbability
}

func finiteNonNegative(v float64) bool {
	return v >= 0 && !math.IsInf(v, 1)
}

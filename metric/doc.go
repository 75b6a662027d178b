// Package metric provides the distance metrics consumed by trees and the KDE
// rule engine.
//
// # Supported Metrics
//
//   - Euclidean: L2 distance (default)
//   - Manhattan: L1 distance
//   - Chebyshev: L-infinity distance
//   - Minkowski: general Lp distance
//
// # Usage
//
//	m, _ := metric.Provider(metric.TypeEuclidean)
//	d := m.Distance(a, b)
package metric

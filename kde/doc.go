// Package kde implements the traversal rules for approximate kernel density
// estimation over space-partitioning trees.
//
// A traversal driver (see package traversal) walks one or two trees and asks
// a Rules value what to do with every query/reference node it meets:
//
//   - Score / ScoreNodes return Prune when the node's contribution was
//     resolved from its distance bounds (or by Monte Carlo sampling) and
//     added to the Accumulator, or a finite score telling the driver to
//     recurse, nearest first.
//   - Rescore / RescoreNodes re-check a queued node once more slack has been
//     banked, dropping it when its whole contribution fits in the budget.
//   - BaseCase evaluates a single point pair exactly.
//
// # Error budget
//
// Every reference point that is resolved for a query banks a tolerance of
// AbsError/|R| + RelError·K_lower into that query's slack. Approximations
// spend slack and never more than was banked, so each final density lies
// within AbsError + RelError·exact of the exact kernel sum. With Monte Carlo
// enabled the bound holds with probability at least SuccessProbability.
//
// # Concurrency
//
// A Rules value is not safe for concurrent use. Several Rules may share an
// Accumulator when each one writes a disjoint set of query indices.
package kde

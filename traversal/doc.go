// Package traversal walks space-partitioning trees on behalf of pruning rules.
//
// The drivers know nothing about density estimation. They ask the rules to
// score a node (or a query/reference node pair); a score of math.MaxFloat64
// means the pair is resolved and is skipped, any other score orders the
// recursion with smaller scores visited first. At leaf level every remaining
// point pair is handed to BaseCase.
//
// Drivers:
//
//   - SingleTree: depth-first, one query point at a time
//   - BestFirst: one query point at a time, nodes popped from a priority queue
//   - DualTree: depth-first over a query tree and a reference tree
//   - ParallelSingleTree, ParallelDualTree: fan disjoint query sets out to
//     goroutines, one rules value per task
package traversal

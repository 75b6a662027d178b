// Package tree provides the spatial trees the KDE rules score against.
//
// Two trees are built here:
//
//   - KDTree: median splits on the widest dimension, hyperrectangle bounds.
//   - BallTree: pivot-centered balls whose left child shares the parent's
//     pivot, so center distances can be reused between Score calls.
//
// Both reorder their input so every node covers a contiguous index range of
// Points(); OldFromNew maps those indices back to the caller's order.
//
// Trees are immutable after construction and safe for concurrent readers.
package tree

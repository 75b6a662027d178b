// Package kdego provides approximate kernel density estimation over
// space-partitioning trees.
//
// An Estimator builds a kd-tree or ball tree over a reference set once and
// evaluates the density at query points with a dual-tree, single-tree,
// best-first or brute-force traversal. Nodes whose kernel contribution is
// pinned down by their distance bounds are resolved without visiting their
// points, so every estimate lies within AbsError + RelError·exact of the
// exact kernel sum.
//
// # Quick Start
//
//	est, _ := kdego.New(reference,
//	    kdego.WithKernel(kernel.Gaussian{H: 0.2}),
//	    kdego.WithRelError(0.01),
//	)
//	res, _ := est.Evaluate(ctx, queries)
//	fmt.Println(res.Densities[0], res.Approximated.GetCardinality())
//
// EvaluateSelf estimates the density at every reference point, leaving out
// the point's own contribution unless WithIncludeSelf(true) is given.
//
// # Monte Carlo
//
// WithMonteCarlo lets large reference nodes be estimated from a random
// sample. The error bound then holds with probability SuccessProbability per
// query. Sampling is seeded (WithSeed) and reproducible for a fixed worker
// count.
//
// # Normalization
//
// By default densities are raw kernel sums. WithNormalize(true) divides by
// the kernel's integral and the number of contributing reference points.
// Tolerances always apply to the raw sums.
//
// # Persistence
//
// SaveResult writes densities (zstd, lz4 or raw) and a JSON manifest to any
// blobstore.Store, then moves the CURRENT pointer; LoadLatestResult follows
// it. SaveDataset and LoadDataset store point matrices. Local stores memory
// map blobs, and raw matrices decode straight from the mapping.
//
//	store := blobstore.NewLocalStore("./results")
//	_ = kdego.SaveResult(ctx, store, "run-1", res)
//	latest, _ := kdego.LoadLatestResult(ctx, store)
//
// # Concurrency
//
// Evaluations split the query side into tasks run on a bounded errgroup.
// Each task owns its rules and a disjoint set of queries. A shared
// ResourceController caps worker slots and accumulator memory across
// estimators.
package kdego

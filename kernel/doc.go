// Package kernel provides the kernel functions used for density estimation.
//
// A kernel maps a distance to a contribution that decays as the distance
// grows. Kernels with a scale parameter report it through Bandwidth; plain
// functions wrapped in Func report none, which callers detect by the ok
// result instead of a type switch.
package kernel

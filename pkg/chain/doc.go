// Package chain computes multi-stage production chains.
//
// Given a target item and a desired output rate, the solver discovers every
// item participating in the chain, builds a linear balance system over the
// discovered set, solves it exactly via Gaussian elimination, and maps the
// solution back into a needs map: per-minute rates, machine counts, raw
// material flags, transport requirements, byproducts, and synthesized waste
// disposal nodes.
//
// # Pipeline
//
// The stages run strictly in order inside [Solve]:
//
//	discover → build system → solve → populate needs → assign levels →
//	ingredient edges → waste disposal
//
// Each recalculation fully replaces its output: a Plan is built from scratch
// and never patched incrementally (subtree deletion, the one exception, lives
// in package flowgraph).
//
// # Recipe selection
//
// The solver does not choose recipes. The active recipe per item is external
// mutable state on the [Session] (index into the catalog's producer list,
// defaulting to 0). Cyclic recipe graphs are legal; correctness is gated
// solely on the balance matrix being non-singular.
package chain

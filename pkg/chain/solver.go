package chain

import "math"

// pivotEpsilon is the singularity threshold: a pivot below this magnitude
// means the system is singular or underdetermined and the solve fails.
const pivotEpsilon = 1e-9

// rateEpsilon discards solved rates that are numerical noise rather than
// real production.
const rateEpsilon = 1e-6

// solveSystem solves the square system A·x = b in place using Gaussian
// elimination with partial pivoting, returning the solution vector or nil
// when the system is singular.
//
// The largest-magnitude entry in each column is chosen as pivot and rows are
// swapped for numerical stability. Elimination clears the column both below
// and above the pivot, so back-substitution reduces to a single division per
// row. There is no least-squares fallback: the contract is exact solve or
// explicit failure, and NaN/Inf never leak into a returned solution.
func solveSystem(a [][]float64, b []float64) []float64 {
	n := len(b)

	for col := 0; col < n; col++ {
		pivot := col
		for row := col + 1; row < n; row++ {
			if math.Abs(a[row][col]) > math.Abs(a[pivot][col]) {
				pivot = row
			}
		}
		if math.Abs(a[pivot][col]) < pivotEpsilon {
			return nil
		}
		a[col], a[pivot] = a[pivot], a[col]
		b[col], b[pivot] = b[pivot], b[col]

		for row := 0; row < n; row++ {
			if row == col || a[row][col] == 0 {
				continue
			}
			factor := a[row][col] / a[col][col]
			for c := col; c < n; c++ {
				a[row][c] -= factor * a[col][c]
			}
			b[row] -= factor * b[col]
		}
	}

	x := make([]float64, n)
	for i := range x {
		x[i] = b[i] / a[i][i]
		if math.IsNaN(x[i]) || math.IsInf(x[i], 0) {
			return nil
		}
	}
	return x
}

package services

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// maxCondition rejects normal equations too close to singular to solve.
const maxCondition = 1e12

func calculateMean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return sum(values) / float64(len(values))
}

// olsFit returns the least-squares coefficients of y on the columns of X,
// or nil when the normal equations are singular.
func olsFit(y []float64, X [][]float64) []float64 {
	if len(X) == 0 || len(X) != len(y) {
		return nil
	}
	n, p := len(X), len(X[0])
	design := mat.NewDense(n, p, nil)
	for r, row := range X {
		if len(row) != p {
			return nil
		}
		design.SetRow(r, row)
	}

	var xtx mat.SymDense
	xtx.SymOuterK(1, design.T())
	var xty mat.VecDense
	xty.MulVec(design.T(), mat.NewVecDense(n, y))
	return solveCholesky(&xtx, &xty)
}

// solveSymmetric solves A x = b for symmetric positive definite A. It
// returns nil when A is not positive definite.
func solveSymmetric(A [][]float64, b []float64) []float64 {
	n := len(A)
	if n == 0 || len(b) != n {
		return nil
	}
	sym := mat.NewSymDense(n, nil)
	for i, row := range A {
		if len(row) != n {
			return nil
		}
		for j := i; j < n; j++ {
			sym.SetSym(i, j, row[j])
		}
	}
	return solveCholesky(sym, mat.NewVecDense(n, b))
}

func solveCholesky(a mat.Symmetric, b mat.Vector) []float64 {
	var chol mat.Cholesky
	if ok := chol.Factorize(a); !ok || chol.Cond() > maxCondition {
		return nil
	}
	var x mat.VecDense
	if err := chol.SolveVecTo(&x, b); err != nil {
		return nil
	}
	return mat.Col(nil, 0, &x)
}

// polyMul multiplies two polynomials in the backshift operator given as
// coefficient slices, lowest power first.
func polyMul(a, b []float64) []float64 {
	out := make([]float64, len(a)+len(b)-1)
	for i, x := range a {
		for j, y := range b {
			out[i+j] += x * y
		}
	}
	return out
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

package services

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat/distuv"
)

// SARIMA(1,1,1)(1,1,0)12 fitted by conditional sum of squares.
//
// With w_t = (1-B)(1-B^12) y_t the model is
//
//	(1 - φB)(1 - ΦB^12) w_t = (1 + θB) e_t
//
// Stationarity and invertibility are not enforced.
const (
	seasonalPeriod = 12
	diffLag        = seasonalPeriod + 1 // first index with a defined w_t
)

type sarimaModel struct {
	phi, theta, sphi float64
	sigma2           float64

	y []float64 // observed series
	w []float64 // differenced series aligned with y; zero before diffLag
	e []float64 // in-sample residuals aligned with y
}

func fitSARIMA(y []float64) (*sarimaModel, error) {
	if len(y) <= diffLag+1 {
		return nil, fmt.Errorf("series too short to difference: %d points", len(y))
	}

	m := &sarimaModel{y: y, w: difference(y)}
	start := m.startValues()

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			return m.css(x[0], x[1], x[2], nil)
		},
	}
	params := start
	best := m.css(start[0], start[1], start[2], nil)
	result, err := optimize.Minimize(problem, start, &optimize.Settings{MajorIterations: 2000}, &optimize.NelderMead{})
	if result != nil && isFinite(result.F) && result.F <= best {
		params, best = result.X, result.F
	} else if err != nil {
		return nil, fmt.Errorf("optimize: %w", err)
	}
	if !isFinite(best) {
		return nil, fmt.Errorf("model did not converge")
	}

	m.phi, m.theta, m.sphi = params[0], params[1], params[2]
	m.e = make([]float64, len(y))
	sse := m.css(m.phi, m.theta, m.sphi, m.e)
	m.sigma2 = sse / float64(len(y)-diffLag)
	return m, nil
}

// difference applies (1-B)(1-B^12).
func difference(y []float64) []float64 {
	w := make([]float64, len(y))
	for t := diffLag; t < len(y); t++ {
		w[t] = y[t] - y[t-1] - y[t-seasonalPeriod] + y[t-diffLag]
	}
	return w
}

// css returns the conditional sum of squared residuals. When e is non-nil
// the residuals are written into it.
func (m *sarimaModel) css(phi, theta, sphi float64, e []float64) float64 {
	if e == nil {
		e = make([]float64, len(m.w))
	}
	lagged := func(s []float64, k int) float64 {
		if k < diffLag {
			return 0
		}
		return s[k]
	}

	total := 0.0
	for t := diffLag; t < len(m.w); t++ {
		e[t] = m.w[t] -
			phi*lagged(m.w, t-1) -
			sphi*lagged(m.w, t-seasonalPeriod) +
			phi*sphi*lagged(m.w, t-diffLag) -
			theta*lagged(e, t-1)
		total += e[t] * e[t]
	}
	if !isFinite(total) {
		return math.Inf(1)
	}
	return total
}

// startValues follows Hannan–Rissanen: fit the AR part by least squares,
// then regress on the lagged AR residual for θ.
func (m *sarimaModel) startValues() []float64 {
	n := len(m.w)
	seasonal := n-(diffLag+seasonalPeriod) >= 6

	first := diffLag + 1
	if seasonal {
		first = diffLag + seasonalPeriod
	}

	var X [][]float64
	var target []float64
	for t := first; t < n; t++ {
		row := []float64{m.w[t-1]}
		if seasonal {
			row = append(row, m.w[t-seasonalPeriod])
		}
		X = append(X, row)
		target = append(target, m.w[t])
	}

	phi, sphi := 0.0, 0.0
	if coef := olsFit(target, X); coef != nil {
		phi = coef[0]
		if seasonal {
			sphi = coef[1]
		}
	}

	theta := 0.0
	resid := make([]float64, n)
	for t := first; t < n; t++ {
		resid[t] = m.w[t] - phi*m.w[t-1]
		if seasonal {
			resid[t] -= sphi * m.w[t-seasonalPeriod]
		}
	}
	var Xe [][]float64
	var te []float64
	for t := first + 1; t < n; t++ {
		Xe = append(Xe, []float64{resid[t-1]})
		te = append(te, resid[t])
	}
	if coef := olsFit(te, Xe); coef != nil {
		theta = coef[0]
	}

	return []float64{clampStart(phi), clampStart(theta), clampStart(sphi)}
}

func clampStart(v float64) float64 {
	if !isFinite(v) {
		return 0
	}
	return math.Max(-0.95, math.Min(0.95, v))
}

// forecast returns the h-step mean forecast and a two-sided interval at
// the given confidence level.
func (m *sarimaModel) forecast(h int, level float64) (mean, lower, upper []float64) {
	n := len(m.y)
	y := append(append([]float64{}, m.y...), make([]float64, h)...)
	w := append(append([]float64{}, m.w...), make([]float64, h)...)
	e := append(append([]float64{}, m.e...), make([]float64, h)...)

	for t := n; t < n+h; t++ {
		w[t] = m.phi*w[t-1] + m.sphi*w[t-seasonalPeriod] - m.phi*m.sphi*w[t-diffLag] + m.theta*e[t-1]
		y[t] = w[t] + y[t-1] + y[t-seasonalPeriod] - y[t-diffLag]
	}

	psi := m.psiWeights(h)
	z := distuv.UnitNormal.Quantile(0.5 + level/2)

	mean = make([]float64, h)
	lower = make([]float64, h)
	upper = make([]float64, h)
	variance := 0.0
	for k := 0; k < h; k++ {
		variance += psi[k] * psi[k]
		half := z * math.Sqrt(m.sigma2*variance)
		mean[k] = y[n+k]
		lower[k] = mean[k] - half
		upper[k] = mean[k] + half
	}
	return mean, lower, upper
}

// psiWeights expands the MA(∞) form of the integrated model.
func (m *sarimaModel) psiWeights(h int) []float64 {
	seasonalAR := make([]float64, seasonalPeriod+1)
	seasonalAR[0], seasonalAR[seasonalPeriod] = 1, -m.sphi
	seasonalDiff := make([]float64, seasonalPeriod+1)
	seasonalDiff[0], seasonalDiff[seasonalPeriod] = 1, -1

	ar := polyMul([]float64{1, -m.phi}, seasonalAR)
	ar = polyMul(ar, []float64{1, -1})
	ar = polyMul(ar, seasonalDiff)

	psi := make([]float64, h)
	for j := 0; j < h; j++ {
		if j == 0 {
			psi[j] = 1
			continue
		}
		if j == 1 {
			psi[j] = m.theta
		}
		for i := 1; i <= j && i < len(ar); i++ {
			psi[j] -= ar[i] * psi[j-i]
		}
	}
	return psi
}

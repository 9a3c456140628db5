package arima

import (
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
)

// Lag polynomials are stored as coefficient slices where index i multiplies
// B^i and index 0 is always 1.

// polyMul multiplies two lag polynomials.
func polyMul(a, b []float64) []float64 {
	out := make([]float64, len(a)+len(b)-1)
	for i, x := range a {
		if x == 0 {
			continue
		}
		for j, y := range b {
			out[i+j] += x * y
		}
	}
	return out
}

// lagPolynomial builds 1 + sign*(c_1 B^lag + c_2 B^{2 lag} + ...).
func lagPolynomial(coeffs []float64, lag int, sign float64) []float64 {
	out := make([]float64, len(coeffs)*lag+1)
	out[0] = 1
	for i, c := range coeffs {
		out[(i+1)*lag] = sign * c
	}
	return out
}

// differencingPolynomial returns (1-B)^d (1-B^m)^D.
func differencingPolynomial(o Order) []float64 {
	poly := []float64{1}
	for i := 0; i < o.D; i++ {
		poly = polyMul(poly, []float64{1, -1})
	}
	for i := 0; i < o.SD; i++ {
		poly = polyMul(poly, lagPolynomial([]float64{1}, o.M, -1))
	}
	return poly
}

// applyDifferencing applies the non-seasonal then the seasonal differences.
func applyDifferencing(values []float64, o Order) []float64 {
	out := append([]float64(nil), values...)
	for i := 0; i < o.D; i++ {
		out = lagDiff(out, 1)
	}
	for i := 0; i < o.SD; i++ {
		out = lagDiff(out, o.M)
	}
	return out
}

func lagDiff(values []float64, lag int) []float64 {
	if len(values) <= lag {
		return nil
	}
	out := make([]float64, len(values)-lag)
	for i := range out {
		out[i] = values[i+lag] - values[i]
	}
	return out
}

// expandPolynomials multiplies the non-seasonal and seasonal factors and
// returns the recursion coefficients: phi for x_t = sum phi_i x_{t-i} + ...,
// theta for ... + e_t + sum theta_j e_{t-j}.
func expandPolynomials(ar, ma, sar, sma []float64, period int) (phi, theta []float64) {
	arPoly := polyMul(lagPolynomial(ar, 1, -1), lagPolynomial(sar, max(period, 1), -1))
	maPoly := polyMul(lagPolynomial(ma, 1, 1), lagPolynomial(sma, max(period, 1), 1))

	phi = make([]float64, len(arPoly)-1)
	for i := range phi {
		phi[i] = -arPoly[i+1]
	}
	theta = make([]float64, len(maPoly)-1)
	copy(theta, maPoly[1:])
	return phi, theta
}

// isStationary reports whether 1 - c_1 z - ... - c_k z^k has all roots
// outside the unit circle, i.e. the companion matrix has spectral radius < 1.
func isStationary(coeffs []float64) bool {
	return spectralRadius(coeffs) < 1
}

// isInvertible reports whether 1 + c_1 z + ... + c_k z^k has all roots
// outside the unit circle.
func isInvertible(coeffs []float64) bool {
	neg := make([]float64, len(coeffs))
	for i, c := range coeffs {
		neg[i] = -c
	}
	return spectralRadius(neg) < 1
}

// spectralRadius returns the largest eigenvalue modulus of the companion
// matrix of x_t = c_1 x_{t-1} + ... + c_k x_{t-k}. Trailing zero
// coefficients are dropped.
func spectralRadius(coeffs []float64) float64 {
	k := len(coeffs)
	for k > 0 && coeffs[k-1] == 0 {
		k--
	}
	switch k {
	case 0:
		return 0
	case 1:
		if coeffs[0] < 0 {
			return -coeffs[0]
		}
		return coeffs[0]
	}

	companion := mat.NewDense(k, k, nil)
	for j := 0; j < k; j++ {
		companion.Set(0, j, coeffs[j])
	}
	for i := 1; i < k; i++ {
		companion.Set(i, i-1, 1)
	}

	var eig mat.Eigen
	if ok := eig.Factorize(companion, mat.EigenNone); !ok {
		return 2
	}

	radius := 0.0
	for _, v := range eig.Values(nil) {
		if a := cmplx.Abs(v); a > radius {
			radius = a
		}
	}
	return radius
}

// psiWeights returns the first n MA(infinity) weights of the integrated
// model phi*(B) y_t = theta*(B) e_t, where phi* includes the differencing
// polynomial.
func psiWeights(phi, theta []float64, diff []float64, n int) []float64 {
	arPoly := make([]float64, len(phi)+1)
	arPoly[0] = 1
	for i, c := range phi {
		arPoly[i+1] = -c
	}
	full := polyMul(arPoly, diff)

	psi := make([]float64, n)
	if n == 0 {
		return psi
	}
	psi[0] = 1
	for j := 1; j < n; j++ {
		v := 0.0
		if j-1 < len(theta) {
			v = theta[j-1]
		}
		for i := 1; i < len(full) && i <= j; i++ {
			v -= full[i] * psi[j-i]
		}
		psi[j] = v
	}
	return psi
}

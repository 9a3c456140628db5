package ets

import "math"

// state holds the level, trend and the last m seasonal states. The seasonal
// state for observation t lives at season[t%m].
type state struct {
	level  float64
	trend  float64
	season []float64
}

func (s state) clone() state {
	s.season = append([]float64(nil), s.season...)
	return s
}

// smoothing holds the smoothing parameters of a spec.
type smoothing struct {
	spec                    Spec
	alpha, beta, gamma, phi float64
}

// predict returns the one-step prediction for observation t together with
// the trend-adjusted level l+phi*b and the seasonal state it used.
func (sm smoothing) predict(st *state, t int) (yhat, lb, s float64) {
	lb = st.level
	if sm.spec.Trend != None {
		lb += sm.phi * st.trend
	}
	switch sm.spec.Season {
	case Additive:
		s = st.season[t%sm.spec.Period]
		return lb + s, lb, s
	case Multiplicative:
		s = st.season[t%sm.spec.Period]
		return lb * s, lb, s
	}
	return lb, lb, 0
}

// update applies the component-form recursions after observing y. The
// same equations hold for additive and multiplicative errors.
func (sm smoothing) update(st *state, t int, y, lb, s float64) {
	var level float64
	switch sm.spec.Season {
	case Additive:
		level = sm.alpha*(y-s) + (1-sm.alpha)*lb
	case Multiplicative:
		level = sm.alpha*(y/s) + (1-sm.alpha)*lb
	default:
		level = sm.alpha*y + (1-sm.alpha)*lb
	}

	if sm.spec.Trend != None {
		betaStar := sm.beta / sm.alpha
		st.trend = betaStar*(level-st.level) + (1-betaStar)*sm.phi*st.trend
	}

	switch sm.spec.Season {
	case Additive:
		st.season[t%sm.spec.Period] = sm.gamma*(y-lb) + (1-sm.gamma)*s
	case Multiplicative:
		st.season[t%sm.spec.Period] = sm.gamma*(y/lb) + (1-sm.gamma)*s
	}

	st.level = level
}

// admissible reports whether a prediction can feed the multiplicative
// recursions.
func (sm smoothing) admissible(yhat, lb, s float64) bool {
	if sm.spec.Season == Multiplicative && (lb <= 0 || s <= 0) {
		return false
	}
	if sm.spec.Error == Multiplicative && yhat <= 0 {
		return false
	}
	return !math.IsNaN(yhat) && !math.IsInf(yhat, 0)
}

// likelihood filters y from init and returns n*log(SSE) plus
// 2*sum(log|yhat|) for multiplicative errors. When yhat and innov are
// non-nil they receive the one-step predictions and innovations.
func (sm smoothing) likelihood(y []float64, init state, yhat, innov []float64) (float64, bool) {
	st := init.clone()
	sse := 0.0
	logSum := 0.0
	for t, v := range y {
		pred, lb, s := sm.predict(&st, t)
		if !sm.admissible(pred, lb, s) {
			return 0, false
		}
		e := v - pred
		if sm.spec.Error == Multiplicative {
			e /= pred
			logSum += math.Log(math.Abs(pred))
		}
		if yhat != nil {
			yhat[t] = pred
			innov[t] = e
		}
		sse += e * e
		sm.update(&st, t, v, lb, s)
	}
	if !(sse > 0) {
		return 0, false
	}
	return float64(len(y))*math.Log(sse) + 2*logSum, true
}

// run filters y from init and returns the final state.
func (sm smoothing) run(y []float64, init state) state {
	st := init.clone()
	for t, v := range y {
		_, lb, s := sm.predict(&st, t)
		sm.update(&st, t, v, lb, s)
	}
	return st
}

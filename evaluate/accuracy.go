package evaluate

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/sartorproj/paxcast/model"
	"github.com/sartorproj/paxcast/stats"
	"github.com/sartorproj/paxcast/timeseries"
)

var (
	// ErrHorizonTooShort is returned when a forecast ends before the test
	// window does.
	ErrHorizonTooShort = errors.New("evaluate: forecast does not cover the test window")
	// ErrMisaligned is returned when a forecast starts after the test window.
	ErrMisaligned = errors.New("evaluate: forecast starts after the test window")
	// ErrZeroActual is returned when an actual value is zero, which leaves
	// percentage errors undefined.
	ErrZeroActual = errors.New("evaluate: zero actual value, MAPE undefined")
	// ErrUnknownModel is returned when a score refers to a model that is not
	// among the fitted models.
	ErrUnknownModel = errors.New("evaluate: unknown model")
	// ErrEmpty is returned when there is nothing to compare.
	ErrEmpty = errors.New("evaluate: no observations to compare")
)

// Accuracy holds the error metrics of a forecast or an in-sample fit.
type Accuracy struct {
	ME   float64 `json:"me"`
	RMSE float64 `json:"rmse"`
	MAE  float64 `json:"mae"`
	MPE  float64 `json:"mpe"`
	MAPE float64 `json:"mape"`
	MASE float64 `json:"mase"`
	ACF1 float64 `json:"acf1"`
	N    int     `json:"n"`
}

// Score compares fc with the test window. The forecast may start before
// test but must cover every test period. train supplies the MASE scale
// with seasonal period m.
func Score(fc *model.Forecast, test, train *timeseries.Series, m int) (Accuracy, error) {
	if test.Len() == 0 {
		return Accuracy{}, ErrEmpty
	}
	offset := test.Start.Sub(fc.Start)
	if offset < 0 {
		return Accuracy{}, fmt.Errorf("%w: forecast starts %s, test starts %s", ErrMisaligned, fc.Start, test.Start)
	}
	if offset+test.Len() > fc.Len() {
		return Accuracy{}, fmt.Errorf("%w: forecast ends %s, test ends %s", ErrHorizonTooShort, fc.End(), test.End())
	}

	predicted := make([]float64, test.Len())
	for i := range predicted {
		predicted[i] = fc.Points[offset+i].Mean
	}
	return accuracy(test.Values, predicted, train, m)
}

// TrainingAccuracy compares the in-sample one-step predictions of f with the
// training data over the periods f covers.
func TrainingAccuracy(f model.Fitted, train *timeseries.Series, m int) (Accuracy, error) {
	fitted := f.FittedValues()
	if fitted == nil || fitted.Len() == 0 {
		return Accuracy{}, ErrEmpty
	}
	offset := train.IndexOf(fitted.Start)
	if offset < 0 || offset+fitted.Len() > train.Len() {
		return Accuracy{}, fmt.Errorf("%w: fitted values %s..%s outside training data", ErrMisaligned, fitted.Start, fitted.End())
	}
	return accuracy(train.Values[offset:offset+fitted.Len()], fitted.Values, train, m)
}

func accuracy(actual, predicted []float64, train *timeseries.Series, m int) (Accuracy, error) {
	n := len(actual)
	if n == 0 {
		return Accuracy{}, ErrEmpty
	}

	errs := make([]float64, n)
	floats.SubTo(errs, actual, predicted)

	pct := make([]float64, n)
	for i, a := range actual {
		if a == 0 {
			return Accuracy{}, fmt.Errorf("%w at position %d", ErrZeroActual, i)
		}
		pct[i] = 100 * errs[i] / a
	}

	acc := Accuracy{N: n}
	acc.ME = stat.Mean(errs, nil)
	acc.MPE = stat.Mean(pct, nil)

	sq := 0.0
	abs := 0.0
	absPct := 0.0
	for i, e := range errs {
		sq += e * e
		abs += math.Abs(e)
		absPct += math.Abs(pct[i])
	}
	acc.RMSE = math.Sqrt(sq / float64(n))
	acc.MAE = abs / float64(n)
	acc.MAPE = absPct / float64(n)

	acc.MASE = math.NaN()
	if scale := naiveScale(train, m); scale > 0 {
		acc.MASE = acc.MAE / scale
	}

	acc.ACF1 = math.NaN()
	if r := stats.ACF(timeseries.New(errs), 1); len(r) > 1 {
		acc.ACF1 = r[1]
	}
	return acc, nil
}

// naiveScale is the in-sample MAE of the seasonal naive forecast, falling
// back to the naive forecast for training data shorter than m+1.
func naiveScale(train *timeseries.Series, m int) float64 {
	if train == nil {
		return 0
	}
	if m < 1 || train.Len() <= m {
		m = 1
	}
	if train.Len() <= m {
		return 0
	}
	sum := 0.0
	for i := m; i < train.Len(); i++ {
		sum += math.Abs(train.Values[i] - train.Values[i-m])
	}
	return sum / float64(train.Len()-m)
}

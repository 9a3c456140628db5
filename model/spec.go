package model

import (
	"context"
	"fmt"

	"github.com/sartorproj/paxcast/arima"
	"github.com/sartorproj/paxcast/autoarima"
	"github.com/sartorproj/paxcast/ets"
	"github.com/sartorproj/paxcast/timeseries"
)

// Family is the model family of a specification.
type Family string

const (
	FamilyETS   Family = "ets"
	FamilyARIMA Family = "arima"
)

// Spec is a model specification. The implementations are ETSSpec and
// ARIMASpec.
type Spec interface {
	Family() Family
	String() string

	fit(ctx context.Context, name string, train *timeseries.Series) (Fitted, error)
}

// ETSSpec specifies an exponential smoothing model. When Auto is set the
// model is chosen by ets.Auto with seasonal period Period and Model is
// ignored.
type ETSSpec struct {
	Auto   bool
	Period int
	Model  ets.Spec
}

func (s ETSSpec) Family() Family { return FamilyETS }

func (s ETSSpec) String() string {
	if s.Auto {
		return fmt.Sprintf("ETS(auto)[%d]", s.Period)
	}
	return s.Model.String()
}

func (s ETSSpec) fit(ctx context.Context, name string, train *timeseries.Series) (Fitted, error) {
	if s.Auto {
		res, err := ets.Auto(ctx, train, ets.DefaultAutoConfig(s.Period))
		if err != nil {
			return nil, err
		}
		return &etsFitted{name: name, model: res.Model, auto: true}, nil
	}

	m := ets.New(s.Model)
	if err := m.FitContext(ctx, train); err != nil {
		return nil, err
	}
	return &etsFitted{name: name, model: m}, nil
}

// ARIMASpec specifies a seasonal ARIMA model. A non-nil Auto selects the
// order with autoarima and Order and Constant are ignored.
type ARIMASpec struct {
	Order    arima.Order
	Constant bool
	Auto     *autoarima.Config
}

func (s ARIMASpec) Family() Family { return FamilyARIMA }

func (s ARIMASpec) String() string {
	if s.Auto != nil {
		search := "exhaustive"
		if s.Auto.Stepwise {
			search = "stepwise"
		}
		if s.Auto.Seasonal {
			return fmt.Sprintf("ARIMA(auto, %s)[%d]", search, s.Auto.SeasonalM)
		}
		return fmt.Sprintf("ARIMA(auto, %s)", search)
	}
	if s.Constant {
		return s.Order.String() + " with constant"
	}
	return s.Order.String()
}

func (s ARIMASpec) fit(ctx context.Context, name string, train *timeseries.Series) (Fitted, error) {
	if s.Auto != nil {
		// Copy so concurrent fits never share a Config.
		config := *s.Auto
		res, err := autoarima.AutoARIMA(ctx, train, &config)
		if err != nil {
			return nil, err
		}
		return &arimaFitted{name: name, model: res.Model, auto: true}, nil
	}

	m := arima.NewFromOrder(s.Order, s.Constant)
	if err := m.FitContext(ctx, train); err != nil {
		return nil, err
	}
	return &arimaFitted{name: name, model: m}, nil
}

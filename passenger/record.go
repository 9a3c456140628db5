package passenger

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/sartorproj/paxcast/timeseries"
)

var (
	// ErrDataIntegrity wraps every input data error.
	ErrDataIntegrity = errors.New("data integrity")
	// ErrMissingColumn is returned when a required column is absent.
	ErrMissingColumn = fmt.Errorf("%w: missing column", ErrDataIntegrity)
	// ErrMalformedPeriod is returned for an unparseable activity period.
	ErrMalformedPeriod = fmt.Errorf("%w: malformed activity period", ErrDataIntegrity)
	// ErrInvalidCount is returned for a negative or non-integer count.
	ErrInvalidCount = fmt.Errorf("%w: invalid passenger count", ErrDataIntegrity)
	// ErrInvalidRecord is returned when a record fails validation.
	ErrInvalidRecord = fmt.Errorf("%w: invalid record", ErrDataIntegrity)
)

// Record is one row of passenger activity.
type Record struct {
	Period               timeseries.Month `json:"period" validate:"required"`
	OperatingAirline     string           `json:"operating_airline" validate:"max=128"`
	OperatingAirlineCode string           `json:"operating_airline_code" validate:"omitempty,alphanum,max=3"`
	PublishedAirline     string           `json:"published_airline" validate:"max=128"`
	PublishedAirlineCode string           `json:"published_airline_code" validate:"omitempty,alphanum,max=3"`
	GeoSummary           string           `json:"geo_summary" validate:"max=64"`
	GeoRegion            string           `json:"geo_region" validate:"max=64"`
	ActivityType         string           `json:"activity_type" validate:"max=64"`
	PriceCategory        string           `json:"price_category" validate:"max=64"`
	Terminal             string           `json:"terminal" validate:"max=64"`
	BoardingArea         string           `json:"boarding_area" validate:"max=64"`
	PassengerCount       int64            `json:"passenger_count" validate:"gte=0"`
}

// Earliest and latest accepted activity years.
const (
	MinYear = 1900
	MaxYear = 2200
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func recordValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterStructValidation(func(sl validator.StructLevel) {
			m := sl.Current().Interface().(timeseries.Month)
			if m.Year < MinYear || m.Year > MaxYear {
				sl.ReportError(m.Year, "Year", "Year", "year_range", "")
			}
		}, timeseries.Month{})
	})
	return validate
}

// Validate checks the record's field constraints.
func (r *Record) Validate() error {
	err := recordValidator().Struct(r)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	msgs := make([]string, len(verrs))
	for i, fe := range verrs {
		msgs[i] = fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag())
	}
	return fmt.Errorf("%w: %s", ErrInvalidRecord, strings.Join(msgs, "; "))
}

// Package autoarima implements automatic ARIMA model selection.
package autoarima

import (
	"context"
	"errors"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/sartorproj/paxcast/arima"
	"github.com/sartorproj/paxcast/stats"
	"github.com/sartorproj/paxcast/timeseries"
)

// ErrNoModel is returned when no candidate could be fitted.
var ErrNoModel = errors.New("autoarima: no candidate model could be fitted")

// Config holds configuration for auto ARIMA search.
type Config struct {
	MaxP        int    // Maximum AR order (default: 5)
	MaxD        int    // Maximum differencing order (default: 2)
	MaxQ        int    // Maximum MA order (default: 5)
	MaxSP       int    // Maximum seasonal AR order (default: 2)
	MaxSD       int    // Maximum seasonal differencing order (default: 1)
	MaxSQ       int    // Maximum seasonal MA order (default: 2)
	MaxOrder    int    // Maximum p+q+P+Q in exhaustive search (default: 6)
	MaxModels   int    // Cap on stepwise fits (default: 94)
	Seasonal    bool   // Whether to consider seasonal models
	SeasonalM   int    // Seasonal period (required if Seasonal=true)
	Stepwise    bool   // Use stepwise search instead of exhaustive
	Criterion   string // Information criterion: "aic", "aicc" or "bic" (default: "aicc")
	StationTest string // Stationarity test for d: "kpss", "adf" or "pp" (default: "kpss")
	Workers     int    // Concurrent fits in exhaustive search (default: 1)

	// Trace, when set, is called after every candidate fit.
	Trace func(Candidate)
}

// DefaultConfig returns the default auto ARIMA configuration.
func DefaultConfig() *Config {
	return &Config{
		MaxP:        5,
		MaxD:        2,
		MaxQ:        5,
		MaxSP:       2,
		MaxSD:       1,
		MaxSQ:       2,
		MaxOrder:    6,
		MaxModels:   94,
		Seasonal:    false,
		Stepwise:    true,
		Criterion:   "aicc",
		StationTest: "kpss",
		Workers:     1,
	}
}

// Candidate is one evaluated specification.
type Candidate struct {
	Order     arima.Order
	Constant  bool
	Criterion float64
	Err       error
}

func (c Candidate) String() string {
	if c.Constant {
		return c.Order.String() + " with constant"
	}
	return c.Order.String()
}

// Result represents the result of auto ARIMA model selection.
type Result struct {
	Model           *arima.Model
	Order           arima.Order
	IncludeConstant bool

	// Model metrics
	AIC       float64
	AICc      float64
	BIC       float64
	LogLik    float64
	Criterion float64

	// Search information
	ModelsEvaluated int
	Candidates      []Candidate
}

// AutoARIMA selects the ARIMA or SARIMA model minimising the configured
// information criterion. Differencing orders come from NSDiffs (seasonal
// strength) and then NDiffs on the seasonally differenced series.
func AutoARIMA(ctx context.Context, series *timeseries.Series, config *Config) (*Result, error) {
	if config == nil {
		config = DefaultConfig()
	}

	m := config.SeasonalM
	seasonal := config.Seasonal && m >= 2

	sd := 0
	if seasonal {
		sd = stats.NSDiffs(series, m, config.MaxSD)
	}

	current := series
	for i := 0; i < sd; i++ {
		current = current.SeasonalDiff(m)
	}
	d := stats.NDiffs(current, config.MaxD, config.StationTest)

	s := &searcher{
		ctx:           ctx,
		series:        series,
		config:        config,
		d:             d,
		sd:            sd,
		m:             m,
		seasonal:      seasonal,
		allowConstant: d+sd <= 1,
		visited:       make(map[key]bool),
	}

	var err error
	if config.Stepwise {
		err = s.stepwise()
	} else {
		err = s.exhaustive()
	}
	if err != nil {
		return nil, err
	}

	if s.best == nil {
		return nil, fmt.Errorf("%w: %d candidates tried, last error: %v", ErrNoModel, len(s.candidates), s.lastErr)
	}

	best := s.best
	return &Result{
		Model:           best,
		Order:           best.Order,
		IncludeConstant: best.IncludeConstant,
		AIC:             best.AIC,
		AICc:            best.AICc,
		BIC:             best.BIC,
		LogLik:          best.LogLik,
		Criterion:       s.bestCriterion,
		ModelsEvaluated: len(s.candidates),
		Candidates:      s.candidates,
	}, nil
}

// key identifies a specification within one search.
type key struct {
	p, q, sp, sq int
	constant     bool
}

type searcher struct {
	ctx           context.Context
	series        *timeseries.Series
	config        *Config
	d, sd, m      int
	seasonal      bool
	allowConstant bool

	visited       map[key]bool
	candidates    []Candidate
	best          *arima.Model
	bestKey       key
	bestCriterion float64
	lastErr       error
}

func (s *searcher) order(k key) arima.Order {
	o := arima.Order{P: k.p, D: s.d, Q: k.q}
	if s.seasonal {
		o.SP, o.SD, o.SQ, o.M = k.sp, s.sd, k.sq, s.m
	}
	return o
}

func (s *searcher) admissible(k key) bool {
	c := s.config
	if k.p < 0 || k.q < 0 || k.sp < 0 || k.sq < 0 {
		return false
	}
	if k.p > c.MaxP || k.q > c.MaxQ || k.sp > c.MaxSP || k.sq > c.MaxSQ {
		return false
	}
	if !s.seasonal && (k.sp > 0 || k.sq > 0) {
		return false
	}
	return !k.constant || s.allowConstant
}

func (s *searcher) criterion(model *arima.Model) float64 {
	switch s.config.Criterion {
	case "aic":
		return model.AIC
	case "bic":
		return model.BIC
	default:
		return model.AICc
	}
}

// fit evaluates a single specification.
func (s *searcher) fit(k key) (*arima.Model, Candidate) {
	model := arima.NewFromOrder(s.order(k), k.constant)
	cand := Candidate{Order: model.Order, Constant: k.constant, Criterion: math.Inf(1)}
	if err := model.FitContext(s.ctx, s.series); err != nil {
		cand.Err = err
		return nil, cand
	}
	cand.Criterion = s.criterion(model)
	return model, cand
}

// record appends the candidate and reports whether it became the best.
// Ties keep the earlier candidate.
func (s *searcher) record(k key, model *arima.Model, cand Candidate) bool {
	s.visited[k] = true
	s.candidates = append(s.candidates, cand)
	if s.config.Trace != nil {
		s.config.Trace(cand)
	}
	if cand.Err != nil {
		s.lastErr = cand.Err
		return false
	}
	if s.best == nil || cand.Criterion < s.bestCriterion {
		s.best, s.bestKey, s.bestCriterion = model, k, cand.Criterion
		return true
	}
	return false
}

// try fits k unless it was already visited or is outside the search space.
func (s *searcher) try(k key) (bool, error) {
	if !s.admissible(k) || s.visited[k] {
		return false, nil
	}
	if err := s.ctx.Err(); err != nil {
		return false, err
	}
	model, cand := s.fit(k)
	if err := s.ctx.Err(); err != nil {
		return false, err
	}
	return s.record(k, model, cand), nil
}

// stepwise runs the Hyndman-Khandakar search: four starting models, then
// moves to the first neighbour that improves the criterion until none does
// or the model cap is reached.
func (s *searcher) stepwise() error {
	c := s.allowConstant
	starts := []key{
		{p: 2, q: 2, sp: 1, sq: 1, constant: c},
		{constant: c},
		{p: 1, sp: 1, constant: c},
		{q: 1, sq: 1, constant: c},
	}
	if c {
		starts = append(starts, key{})
	}
	if !s.seasonal {
		for i := range starts {
			starts[i].sp, starts[i].sq = 0, 0
		}
	}

	for _, k := range starts {
		if _, err := s.try(k); err != nil {
			return err
		}
	}
	if s.best == nil {
		return nil
	}

	maxModels := s.config.MaxModels
	if maxModels <= 0 {
		maxModels = 94
	}

	for len(s.candidates) < maxModels {
		improved := false
		for _, k := range s.neighbours(s.bestKey) {
			if len(s.candidates) >= maxModels {
				break
			}
			better, err := s.try(k)
			if err != nil {
				return err
			}
			if better {
				improved = true
				break
			}
		}
		if !improved {
			break
		}
	}
	return nil
}

func (s *searcher) neighbours(b key) []key {
	var out []key
	if s.seasonal {
		out = append(out,
			key{b.p, b.q, b.sp - 1, b.sq, b.constant},
			key{b.p, b.q, b.sp + 1, b.sq, b.constant},
			key{b.p, b.q, b.sp, b.sq - 1, b.constant},
			key{b.p, b.q, b.sp, b.sq + 1, b.constant},
			key{b.p, b.q, b.sp - 1, b.sq - 1, b.constant},
			key{b.p, b.q, b.sp + 1, b.sq + 1, b.constant},
			key{b.p, b.q, b.sp - 1, b.sq + 1, b.constant},
			key{b.p, b.q, b.sp + 1, b.sq - 1, b.constant},
		)
	}
	out = append(out,
		key{b.p - 1, b.q, b.sp, b.sq, b.constant},
		key{b.p + 1, b.q, b.sp, b.sq, b.constant},
		key{b.p, b.q - 1, b.sp, b.sq, b.constant},
		key{b.p, b.q + 1, b.sp, b.sq, b.constant},
		key{b.p - 1, b.q - 1, b.sp, b.sq, b.constant},
		key{b.p + 1, b.q + 1, b.sp, b.sq, b.constant},
		key{b.p - 1, b.q + 1, b.sp, b.sq, b.constant},
		key{b.p + 1, b.q - 1, b.sp, b.sq, b.constant},
		key{b.p, b.q, b.sp, b.sq, !b.constant},
	)
	return out
}

// exhaustive fits every admissible specification with p+q+P+Q <= MaxOrder,
// concurrently, and records them in enumeration order.
func (s *searcher) exhaustive() error {
	maxOrder := s.config.MaxOrder
	if maxOrder <= 0 {
		maxOrder = 6
	}

	var keys []key
	for p := 0; p <= s.config.MaxP; p++ {
		for q := 0; q <= s.config.MaxQ; q++ {
			for sp := 0; sp <= s.config.MaxSP; sp++ {
				for sq := 0; sq <= s.config.MaxSQ; sq++ {
					if p+q+sp+sq > maxOrder {
						continue
					}
					for _, constant := range []bool{false, true} {
						k := key{p, q, sp, sq, constant}
						if s.admissible(k) {
							keys = append(keys, k)
						}
					}
				}
			}
		}
	}

	models := make([]*arima.Model, len(keys))
	cands := make([]Candidate, len(keys))

	g, ctx := errgroup.WithContext(s.ctx)
	g.SetLimit(max(1, s.config.Workers))
	for i, k := range keys {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			models[i], cands[i] = s.fit(k)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if err := s.ctx.Err(); err != nil {
		return err
	}

	for i, k := range keys {
		s.record(k, models[i], cands[i])
	}
	return nil
}

// Predict generates forecasts using the selected model.
func (r *Result) Predict(steps int) ([]float64, error) {
	if r.Model == nil {
		return nil, arima.ErrNotFitted
	}
	return r.Model.Predict(steps)
}

// Residuals returns the model residuals.
func (r *Result) Residuals() *timeseries.Series {
	if r.Model == nil {
		return nil
	}
	return r.Model.Residuals()
}

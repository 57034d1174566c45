package dataset

import (
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/sony/gobreaker/v2"

	"econsim/internal/config"
	"econsim/internal/types"
)

// Source serves dataset queries. The startup snapshot backs history and
// country listing; baseline queries re-read the file on every call so they
// always reflect the current file contents. The re-read path sits behind a
// circuit breaker: when the file keeps failing to load, the breaker opens
// and baseline requests fail fast with a readiness error instead of hitting
// the disk on every call.
type Source struct {
	path    string
	table   atomic.Pointer[Table]
	breaker *gobreaker.CircuitBreaker[*Table]
	logger  *slog.Logger
}

// NewSource loads the startup snapshot and configures the baseline re-read
// breaker. A failed initial load is not fatal: the Source starts not-ready
// and every affected query answers with a readiness error.
func NewSource(cfg config.DatasetConfig, logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Source{
		path:   cfg.Path,
		logger: logger,
	}

	maxFailures := cfg.BreakerMaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}
	s.breaker = gobreaker.NewCircuitBreaker[*Table](gobreaker.Settings{
		Name:    "dataset-reread",
		Timeout: cfg.BreakerOpenFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("dataset breaker state change",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	})

	if tbl, err := LoadTable(cfg.Path); err != nil {
		logger.Warn("historical dataset not loaded", slog.String("path", cfg.Path), slog.String("error", err.Error()))
	} else {
		s.table.Store(tbl)
		logger.Info("historical dataset loaded",
			slog.String("path", cfg.Path),
			slog.Int("rows", tbl.Len()),
			slog.Int("countries", len(tbl.Countries())),
		)
	}

	return s
}

// Ready reports whether the startup snapshot is available and non-empty.
func (s *Source) Ready() bool {
	t := s.table.Load()
	return t != nil && t.Len() > 0
}

// Reload re-reads the dataset file and atomically swaps the snapshot used by
// history and country-listing queries. In-flight requests keep the snapshot
// they already read.
func (s *Source) Reload() error {
	tbl, err := LoadTable(s.path)
	if err != nil {
		return err
	}
	s.table.Store(tbl)
	return nil
}

// errDataUnavailable is the uniform readiness rejection for dataset queries.
func errDataUnavailable(err error) *types.AppError {
	return types.NewAppError(
		types.ErrCodeReadinessDataUnavailable,
		"historical data is not available",
		err,
	)
}

// Countries enumerates the known countries, sorted.
func (s *Source) Countries() ([]string, error) {
	t := s.table.Load()
	if t == nil || t.Len() == 0 {
		return nil, errDataUnavailable(nil)
	}
	return t.Countries(), nil
}

// History returns the time series for one country, ordered by year ascending.
func (s *Source) History(country string) ([]types.HistoricalRecord, error) {
	t := s.table.Load()
	if t == nil || t.Len() == 0 {
		return nil, errDataUnavailable(nil)
	}
	records := t.History(country)
	if len(records) == 0 {
		return nil, types.NewAppError(
			types.ErrCodeNotFoundCountry,
			"no data found for country: "+country,
			nil,
		)
	}
	return records, nil
}

// Baseline computes the historical mean rates for one country from a fresh
// read of the dataset file.
func (s *Source) Baseline(country string) (types.BaselineRates, error) {
	tbl, err := s.breaker.Execute(func() (*Table, error) {
		return LoadTable(s.path)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			s.logger.Warn("baseline re-read rejected by open breaker", slog.String("path", s.path))
		} else {
			s.logger.Error("baseline re-read failed", slog.String("path", s.path), slog.String("error", err.Error()))
		}
		return types.BaselineRates{}, errDataUnavailable(err)
	}

	rates, ok := tbl.Baseline(country)
	if !ok {
		return types.BaselineRates{}, types.NewAppError(
			types.ErrCodeNotFoundCountry,
			"no data found for country: "+country,
			nil,
		)
	}
	return rates, nil
}

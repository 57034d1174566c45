package scenario

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"golang.org/x/sync/errgroup"

	"econsim/internal/artifact"
	"econsim/internal/types"
)

// MaxBatchScenarios is the maximum number of scenarios in a batch request.
const MaxBatchScenarios = 50

// batchConcurrencyLimit bounds the number of scenarios evaluated in parallel.
const batchConcurrencyLimit = 8

// Fixed response strings. The interpretation sentence embeds the rounded
// prediction; the note is the standing disclaimer that this is sensitivity
// analysis, not forecasting.
const (
	modelType      = "Scenario Simulator (Concurrent Indicators)"
	disclaimerNote = "This is a sensitivity analysis tool, not a forecast"
)

// ExamplePayload is the stable example embedded in validation rejections to
// illustrate the correct request shape. It is hardcoded, never derived from
// the rejected input.
var ExamplePayload = map[string]any{
	types.FieldCountry:     "United States",
	types.FieldPopulation:  1.0,
	types.FieldExports:     10.0,
	types.FieldImports:     5.0,
	types.FieldInvestment:  8.0,
	types.FieldConsumption: 3.0,
	types.FieldGovtSpend:   2.0,
}

// Result is the response to one successful simulation: the echoed validated
// inputs, the rounded prediction, and the fixed interpretation text.
type Result struct {
	Scenario           types.Scenario `json:"scenario"`
	PredictedGDPGrowth float64        `json:"predicted_gdp_growth"`
	ModelType          string         `json:"model_type"`
	Interpretation     string         `json:"interpretation"`
	Note               string         `json:"note"`
}

// ErrorDetail is a lightweight error structure used in batch item errors.
type ErrorDetail struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// BatchItem pairs one batch input with its outcome. Exactly one of Result
// and Error is set.
type BatchItem struct {
	Index  int          `json:"index"`
	Result *Result      `json:"result,omitempty"`
	Error  *ErrorDetail `json:"error,omitempty"`
}

// BatchResult separates successes from failures across a batch.
type BatchResult struct {
	Items     []BatchItem `json:"items"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
}

// Service orchestrates the scenario pipeline over the loaded artifacts.
// It is stateless per request; the artifact snapshot is read once per call.
type Service struct {
	store  *artifact.Store
	logger *slog.Logger
}

// NewService creates the orchestrator.
func NewService(store *artifact.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger}
}

// Ready reports whether the model and encoder are both loaded.
func (s *Service) Ready() (modelLoaded, encoderLoaded bool) {
	set := s.store.Current()
	return set.Predictor != nil, set.Encoder != nil
}

// Simulate runs the full pipeline for one untrusted payload:
// readiness check, validation, country encoding, feature assembly,
// prediction, response formatting.
//
// Every reachable failure returns a *types.AppError; unclassified failures
// from the opaque model are logged with full detail and surfaced with a
// short cause string only.
func (s *Service) Simulate(ctx context.Context, payload map[string]any) (*Result, error) {
	set := s.store.Current()
	if !set.Ready() {
		return nil, types.NewAppError(
			types.ErrCodeReadinessModelUnavailable,
			"scenario model is not available",
			nil,
		)
	}

	sc, rej := Validate(payload)
	if rej != nil {
		// Attach the stable example so callers can self-correct.
		return nil, rej.WithDetails(map[string]any{
			"required_fields": types.RequiredScenarioFields,
			"example":         ExamplePayload,
		})
	}

	code, err := set.Encoder.Encode(sc.Country)
	if err != nil {
		if errors.Is(err, artifact.ErrUnknownCountry) {
			return nil, types.NewAppErrorWithDetails(
				types.ErrCodeValidationUnknownCountry,
				fmt.Sprintf("country %q not found in training data", sc.Country),
				err,
				map[string]any{"available_countries": vocabularySample(set.Encoder)},
			)
		}
		return nil, s.unclassified("country encoding failed", err)
	}

	// Feature order is the trained contract; it must match the model's
	// training order exactly and is independent of field names.
	features := []float64{
		float64(code),
		sc.Population,
		sc.Exports,
		sc.Imports,
		sc.Investment,
		sc.Consumption,
		sc.GovtSpend,
	}

	predicted, err := set.Predictor.Predict(features)
	if err != nil {
		return nil, s.unclassified("model prediction failed", err)
	}

	rounded := math.Round(predicted*100) / 100
	return &Result{
		Scenario:           *sc,
		PredictedGDPGrowth: rounded,
		ModelType:          modelType,
		Interpretation:     fmt.Sprintf("If these growth rates occur simultaneously, GDP is predicted to grow by %.2f%%", rounded),
		Note:               disclaimerNote,
	}, nil
}

// SimulateBatch evaluates up to MaxBatchScenarios payloads with bounded
// concurrency. Each item succeeds or fails independently; a batch never
// fails as a whole once admitted.
func (s *Service) SimulateBatch(ctx context.Context, payloads []map[string]any) (*BatchResult, error) {
	if len(payloads) > MaxBatchScenarios {
		return nil, types.NewAppError(
			types.ErrCodeValidationBatchSize,
			fmt.Sprintf("batch size exceeds maximum of %d scenarios", MaxBatchScenarios),
			nil,
		)
	}

	items := make([]BatchItem, len(payloads))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(batchConcurrencyLimit)
	for i, payload := range payloads {
		i, payload := i, payload
		g.Go(func() error {
			res, err := s.Simulate(ctx, payload)
			items[i] = BatchItem{Index: i, Result: res}
			if err != nil {
				items[i].Error = toErrorDetail(err)
			}
			return nil
		})
	}
	// Workers never return errors; Wait only synchronizes completion.
	_ = g.Wait()

	out := &BatchResult{Items: items}
	for _, it := range items {
		if it.Error != nil {
			out.Failed++
		} else {
			out.Succeeded++
		}
	}
	return out, nil
}

// unclassified logs an unexpected failure from the opaque artifacts with
// full detail and returns the generic simulation error carrying only a
// short cause string.
func (s *Service) unclassified(msg string, err error) *types.AppError {
	s.logger.Error("simulation failed",
		slog.String("stage", msg),
		slog.String("error", err.Error()),
	)
	return types.NewAppErrorWithDetails(
		types.ErrCodeInternalSimulation,
		"an unexpected error occurred during simulation",
		err,
		map[string]any{"details": err.Error()},
	)
}

// vocabularySample returns the first entries of the encoder's class ordering
// to guide callers toward valid country names.
func vocabularySample(enc artifact.CountryEncoder) []string {
	classes := enc.Classes()
	if len(classes) > artifact.SampleSize {
		classes = classes[:artifact.SampleSize]
	}
	return classes
}

// toErrorDetail flattens any pipeline error into the batch item error shape.
func toErrorDetail(err error) *ErrorDetail {
	var appErr *types.AppError
	if errors.As(err, &appErr) {
		return &ErrorDetail{
			Code:    string(appErr.Code),
			Message: appErr.Message,
			Details: appErr.Details,
		}
	}
	return &ErrorDetail{
		Code:    string(types.ErrCodeInternalUnexpected),
		Message: "an unexpected error occurred",
	}
}

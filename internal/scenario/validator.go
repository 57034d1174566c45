// Package scenario implements the core what-if pipeline: validation of
// untrusted scenario payloads, country encoding, model invocation, and
// response assembly.
package scenario

import (
	"strconv"
	"strings"

	"econsim/internal/types"
)

// numericFields lists the six growth-rate keys in their canonical order.
// Numeric validation walks this order and stops at the first invalid field.
var numericFields = []string{
	types.FieldPopulation,
	types.FieldExports,
	types.FieldImports,
	types.FieldInvestment,
	types.FieldConsumption,
	types.FieldGovtSpend,
}

// Validate turns an untrusted payload into a validated Scenario or a
// structured rejection. It is a pure function of its input.
//
// Rejection behavior, in order:
//   - empty/absent payload
//   - missing required keys, all reported together
//   - empty country after trimming
//   - per numeric field, first failure wins: non-coercible value, then
//     value outside [-100, 100]
//
// The asymmetry (aggregate missing fields, first-invalid numeric) matches
// the wire contract existing callers depend on.
func Validate(payload map[string]any) (*types.Scenario, *types.AppError) {
	if len(payload) == 0 {
		return nil, types.NewAppError(
			types.ErrCodeValidationEmptyPayload,
			"request body is empty",
			nil,
		)
	}

	var missing []string
	for _, field := range types.RequiredScenarioFields {
		if _, ok := payload[field]; !ok {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return nil, types.NewAppErrorWithDetails(
			types.ErrCodeValidationMissingField,
			"missing required fields: "+strings.Join(missing, ", "),
			nil,
			map[string]any{"missing_fields": missing},
		)
	}

	country, ok := coerceString(payload[types.FieldCountry])
	country = strings.TrimSpace(country)
	if !ok || country == "" {
		return nil, types.NewAppError(
			types.ErrCodeValidationEmptyCountry,
			"country name cannot be empty",
			nil,
		)
	}

	rates := make(map[string]float64, len(numericFields))
	for _, field := range numericFields {
		value, ok := coerceFloat(payload[field])
		if !ok {
			return nil, types.NewAppErrorWithDetails(
				types.ErrCodeValidationNotANumber,
				"invalid "+field+" value: must be a number",
				nil,
				map[string]any{"field": field},
			)
		}
		// Written as a negated in-range check so NaN (which fails every
		// ordered comparison) lands in the out-of-range rejection.
		if !(value >= types.MinGrowthRate && value <= types.MaxGrowthRate) {
			return nil, types.NewAppErrorWithDetails(
				types.ErrCodeValidationRateOutOfRange,
				field+" value "+strconv.FormatFloat(value, 'g', -1, 64)+" is outside reasonable range (-100 to 100)",
				nil,
				map[string]any{"field": field, "value": value},
			)
		}
		rates[field] = value
	}

	return &types.Scenario{
		Country:     country,
		Population:  rates[types.FieldPopulation],
		Exports:     rates[types.FieldExports],
		Imports:     rates[types.FieldImports],
		Investment:  rates[types.FieldInvestment],
		Consumption: rates[types.FieldConsumption],
		GovtSpend:   rates[types.FieldGovtSpend],
	}, nil
}

// coerceString accepts JSON strings and numbers as country values.
// Structured values (objects, arrays, booleans, null) do not stringify.
func coerceString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case float64:
		return strconv.FormatFloat(s, 'g', -1, 64), true
	default:
		return "", false
	}
}

// coerceFloat attempts numeric coercion of a JSON value: numbers pass
// through, numeric strings parse. Everything else fails.
func coerceFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

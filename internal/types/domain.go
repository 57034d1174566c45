package types

// Scenario wire field names. These match the keys the trained model's callers
// already send; the validator and the error details reference them verbatim.
const (
	FieldCountry     = "Country"
	FieldPopulation  = "Population_Growth_Rate"
	FieldExports     = "Exports_Growth_Rate"
	FieldImports     = "Imports_Growth_Rate"
	FieldInvestment  = "Investment_Growth_Rate"
	FieldConsumption = "Consumption_Growth_Rate"
	FieldGovtSpend   = "Govt_Spend_Growth_Rate"
)

// RequiredScenarioFields lists the seven required request keys in their
// canonical order. Missing-field errors report against this order.
var RequiredScenarioFields = []string{
	FieldCountry,
	FieldPopulation,
	FieldExports,
	FieldImports,
	FieldInvestment,
	FieldConsumption,
	FieldGovtSpend,
}

// Growth rate bounds in percentage points. Values outside this closed
// interval are rejected before any inference is attempted.
const (
	MinGrowthRate = -100.0
	MaxGrowthRate = 100.0
)

// Scenario is a validated what-if request: a country plus six hypothetical
// simultaneous annual growth rates, all within [MinGrowthRate, MaxGrowthRate].
// It is immutable once produced by the validator.
type Scenario struct {
	Country     string  `json:"country"`
	Population  float64 `json:"population_growth"`
	Exports     float64 `json:"exports_growth"`
	Imports     float64 `json:"imports_growth"`
	Investment  float64 `json:"investment_growth"`
	Consumption float64 `json:"consumption_growth"`
	GovtSpend   float64 `json:"govt_spend_growth"`
}

// HistoricalRecord is one row of the historical time series served to
// callers. Missing numeric values stay nil and serialize as JSON null;
// they are never coerced to zero.
type HistoricalRecord struct {
	Country       string   `json:"Country"`
	Year          int      `json:"Year"`
	GDPGrowth     *float64 `json:"GDP_Growth"`
	ExportsGrowth *float64 `json:"Exports_Growth"`
	ImportsGrowth *float64 `json:"Imports_Growth"`
}

// BaselineRates holds the per-country historical mean of each raw indicator
// growth rate, each rounded to 2 decimal places. Each mean is computed
// independently over that column's non-missing rows; a column with no
// observations at all serializes as null, never as zero.
type BaselineRates struct {
	Population  *float64 `json:"population"`
	Exports     *float64 `json:"exports"`
	Imports     *float64 `json:"imports"`
	Investment  *float64 `json:"investment"`
	Consumption *float64 `json:"consumption"`
	GovtSpend   *float64 `json:"govt_spend"`
}

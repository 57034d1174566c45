// Package dataset provides read-only access to the historical country/year
// growth-rate records backing the history, country-listing, and baseline
// operations. The backing file is a CSV keyed by (Country, Year) with named
// numeric indicator columns; it is loaded once at startup for history
// queries and re-read per baseline request.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"

	"econsim/internal/types"
)

// Raw indicator column names as they appear in the dataset header. These are
// the trained model's source columns and must match the file exactly.
const (
	colCountry     = "Country"
	colYear        = "Year"
	ColGDP         = "GDP_Growth_Rate"
	ColPopulation  = "Population_Growth_Rate"
	ColExports     = "Exports of goods and services_Growth_Rate"
	ColImports     = "Imports of goods and services_Growth_Rate"
	ColInvestment  = "Gross capital formation_Growth_Rate"
	ColConsumption = "Final consumption expenditure_Growth_Rate"
	ColGovtSpend   = "Government_Expenditure_Growth_Rate"
)

// Row is one (country, year) record. Measures holds the numeric columns that
// were present and parseable for this row; a missing cell simply has no map
// entry, so absence is never confused with zero.
type Row struct {
	Country  string
	Year     int
	Measures map[string]float64
}

// Table is an immutable, in-memory snapshot of the dataset file.
type Table struct {
	rows []Row
}

// ParseTable parses CSV bytes into a Table. The header must contain Country
// and Year columns; every other column is treated as a numeric measure.
// Rows with a malformed shape or an unparseable year are skipped rather than
// failing the whole load, matching how the source data is actually curated.
func ParseTable(data []byte) (*Table, error) {
	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading dataset header: %w", err)
	}

	countryIdx, yearIdx := -1, -1
	for i, h := range headers {
		switch strings.TrimSpace(h) {
		case colCountry:
			countryIdx = i
		case colYear:
			yearIdx = i
		}
	}
	if countryIdx < 0 || yearIdx < 0 {
		return nil, fmt.Errorf("dataset header missing %s/%s columns", colCountry, colYear)
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue // skip malformed rows
		}
		if countryIdx >= len(record) || yearIdx >= len(record) {
			continue
		}

		country := strings.TrimSpace(record[countryIdx])
		if country == "" {
			continue
		}
		year, err := strconv.Atoi(strings.TrimSpace(record[yearIdx]))
		if err != nil {
			continue
		}

		row := Row{
			Country:  country,
			Year:     year,
			Measures: make(map[string]float64),
		}
		for i, val := range record {
			if i == countryIdx || i == yearIdx || i >= len(headers) {
				continue
			}
			val = strings.TrimSpace(val)
			if val == "" {
				continue // missing cell
			}
			if f, err := strconv.ParseFloat(val, 64); err == nil && !math.IsNaN(f) {
				row.Measures[strings.TrimSpace(headers[i])] = f
			}
		}
		rows = append(rows, row)
	}

	return &Table{rows: rows}, nil
}

// LoadTable reads and parses the dataset file at path, transparently
// decompressing .zst files.
func LoadTable(path string) (*Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading dataset: %w", err)
	}
	if strings.HasSuffix(path, ".zst") {
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, fmt.Errorf("creating zstd decoder: %w", err)
		}
		defer dec.Close()
		raw, err = dec.DecodeAll(raw, nil)
		if err != nil {
			return nil, fmt.Errorf("decompressing dataset %s: %w", path, err)
		}
	}
	return ParseTable(raw)
}

// Len returns the number of rows in the table.
func (t *Table) Len() int {
	return len(t.rows)
}

// Countries returns the sorted, de-duplicated set of country names.
func (t *Table) Countries() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range t.rows {
		if _, ok := seen[r.Country]; ok {
			continue
		}
		seen[r.Country] = struct{}{}
		out = append(out, r.Country)
	}
	sort.Strings(out)
	return out
}

// History returns the time series for one country, ordered by year ascending.
// The match is exact and case-sensitive. Missing indicator values stay nil.
func (t *Table) History(country string) []types.HistoricalRecord {
	var out []types.HistoricalRecord
	for _, r := range t.rows {
		if r.Country != country {
			continue
		}
		out = append(out, types.HistoricalRecord{
			Country:       r.Country,
			Year:          r.Year,
			GDPGrowth:     measurePtr(r, ColGDP),
			ExportsGrowth: measurePtr(r, ColExports),
			ImportsGrowth: measurePtr(r, ColImports),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// Baseline computes the per-column mean rates for one country. Each of the
// six means is computed independently over that column's non-missing subset,
// rounded to 2 decimal places. The second return is false when the country
// has no rows at all.
func (t *Table) Baseline(country string) (types.BaselineRates, bool) {
	found := false
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, r := range t.rows {
		if r.Country != country {
			continue
		}
		found = true
		for _, col := range baselineColumns {
			if v, ok := r.Measures[col]; ok {
				sums[col] += v
				counts[col]++
			}
		}
	}
	if !found {
		return types.BaselineRates{}, false
	}

	mean := func(col string) *float64 {
		n := counts[col]
		if n == 0 {
			return nil
		}
		m := round2(sums[col] / float64(n))
		return &m
	}

	return types.BaselineRates{
		Population:  mean(ColPopulation),
		Exports:     mean(ColExports),
		Imports:     mean(ColImports),
		Investment:  mean(ColInvestment),
		Consumption: mean(ColConsumption),
		GovtSpend:   mean(ColGovtSpend),
	}, true
}

// baselineColumns lists the six raw indicator columns averaged by Baseline.
var baselineColumns = []string{
	ColPopulation,
	ColExports,
	ColImports,
	ColInvestment,
	ColConsumption,
	ColGovtSpend,
}

func measurePtr(r Row, col string) *float64 {
	if v, ok := r.Measures[col]; ok {
		return &v
	}
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

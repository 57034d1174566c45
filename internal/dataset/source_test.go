package dataset

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"econsim/internal/config"
	"econsim/internal/types"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func writeDataset(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func newTestSource(t *testing.T, content string) (*Source, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	writeDataset(t, path, content)
	return NewSource(config.DatasetConfig{
		Path:               path,
		BreakerMaxFailures: 3,
		BreakerOpenFor:     time.Minute,
	}, testLogger()), path
}

func appCode(t *testing.T, err error) types.ErrorCode {
	t.Helper()
	var appErr *types.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %v", err)
	}
	return appErr.Code
}

func TestSource_Queries(t *testing.T) {
	src, _ := newTestSource(t, testCSV)
	if !src.Ready() {
		t.Fatal("source with valid file should be ready")
	}

	countries, err := src.Countries()
	if err != nil {
		t.Fatal(err)
	}
	if len(countries) != 2 {
		t.Errorf("countries = %v", countries)
	}

	records, err := src.History("Chile")
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 || records[0].Year != 2020 {
		t.Errorf("history = %+v", records)
	}

	rates, err := src.Baseline("Chile")
	if err != nil {
		t.Fatal(err)
	}
	if rates.Population == nil || *rates.Population != 1.05 {
		t.Errorf("Population = %v, want 1.05", rates.Population)
	}
}

func TestSource_HistoryUnknownCountry(t *testing.T) {
	src, _ := newTestSource(t, testCSV)
	_, err := src.History("Atlantis")
	if code := appCode(t, err); code != types.ErrCodeNotFoundCountry {
		t.Errorf("code = %s, want %s", code, types.ErrCodeNotFoundCountry)
	}
}

func TestSource_BaselineUnknownCountry(t *testing.T) {
	src, _ := newTestSource(t, testCSV)
	_, err := src.Baseline("Atlantis")
	if code := appCode(t, err); code != types.ErrCodeNotFoundCountry {
		t.Errorf("code = %s, want %s", code, types.ErrCodeNotFoundCountry)
	}
}

func TestSource_MissingFileStartsDegraded(t *testing.T) {
	src := NewSource(config.DatasetConfig{
		Path:               filepath.Join(t.TempDir(), "absent.csv"),
		BreakerMaxFailures: 3,
		BreakerOpenFor:     time.Minute,
	}, testLogger())

	if src.Ready() {
		t.Fatal("source without file must not be ready")
	}
	if _, err := src.Countries(); appCode(t, err) != types.ErrCodeReadinessDataUnavailable {
		t.Error("Countries should report data unavailable")
	}
	if _, err := src.History("Brazil"); appCode(t, err) != types.ErrCodeReadinessDataUnavailable {
		t.Error("History should report data unavailable")
	}
	if _, err := src.Baseline("Brazil"); appCode(t, err) != types.ErrCodeReadinessDataUnavailable {
		t.Error("Baseline should report data unavailable")
	}
}

func TestSource_BaselineSeesFileChanges(t *testing.T) {
	src, path := newTestSource(t, "Country,Year,Population_Growth_Rate\nBrazil,2020,1.0\n")

	rates, err := src.Baseline("Brazil")
	if err != nil {
		t.Fatal(err)
	}
	if *rates.Population != 1.0 {
		t.Fatalf("Population = %v, want 1.0", *rates.Population)
	}

	// The baseline path re-reads the file; no reload signal needed.
	writeDataset(t, path, "Country,Year,Population_Growth_Rate\nBrazil,2020,2.0\n")
	rates, err = src.Baseline("Brazil")
	if err != nil {
		t.Fatal(err)
	}
	if *rates.Population != 2.0 {
		t.Errorf("Population = %v, want 2.0 after file change", *rates.Population)
	}

	// History keeps serving the startup snapshot.
	records, err := src.History("Brazil")
	if err != nil {
		t.Fatal(err)
	}
	// Population is not part of the history wire shape, but the snapshot
	// row count proves no re-read happened.
	if len(records) != 1 {
		t.Errorf("history rows = %d", len(records))
	}
}

func TestSource_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	src, path := newTestSource(t, testCSV)

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}

	// First failures hit the disk; once the threshold is reached the breaker
	// opens and rejects without touching the file.
	for i := 0; i < 5; i++ {
		if _, err := src.Baseline("Brazil"); appCode(t, err) != types.ErrCodeReadinessDataUnavailable {
			t.Fatalf("call %d: expected data-unavailable, got %v", i, err)
		}
	}

	// The file coming back does not help while the breaker is open.
	writeDataset(t, path, testCSV)
	if _, err := src.Baseline("Brazil"); appCode(t, err) != types.ErrCodeReadinessDataUnavailable {
		t.Error("open breaker should keep rejecting until its timeout elapses")
	}
}

func TestSource_Reload(t *testing.T) {
	src, path := newTestSource(t, "Country,Year,Population_Growth_Rate\nBrazil,2020,1.0\n")

	writeDataset(t, path, "Country,Year,Population_Growth_Rate\nBrazil,2020,1.0\nChile,2020,1.1\n")
	if err := src.Reload(); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}

	countries, err := src.Countries()
	if err != nil {
		t.Fatal(err)
	}
	if len(countries) != 2 {
		t.Errorf("countries after reload = %v", countries)
	}
}

func TestSource_ReloadKeepsSnapshotOnFailure(t *testing.T) {
	src, path := newTestSource(t, "Country,Year,Population_Growth_Rate\nBrazil,2020,1.0\n")

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	if err := src.Reload(); err == nil {
		t.Fatal("Reload of a missing file should fail")
	}

	// The previous snapshot stays in service.
	if _, err := src.Countries(); err != nil {
		t.Errorf("snapshot lost after failed reload: %v", err)
	}
}

package artifact

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"

	"econsim/internal/config"
)

// writeTempFile writes data to a file under t.TempDir and returns its path.
func writeTempFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

// testForestJSON builds a small two-tree forest over 7 features.
//
// Tree 1 splits on feature 0 at 0.5: left leaf 2.0, right leaf 4.0.
// Tree 2 is a single leaf predicting 3.0.
func testForestJSON(t *testing.T) []byte {
	t.Helper()
	art := forestArtifact{
		Format:    forestFormat,
		NFeatures: 7,
		Trees: []regressionTree{
			{Nodes: []treeNode{
				{Feature: 0, Threshold: 0.5, Left: 1, Right: 2},
				{Feature: -1, Value: 2.0},
				{Feature: -1, Value: 4.0},
			}},
			{Nodes: []treeNode{
				{Feature: -1, Value: 3.0},
			}},
		},
	}
	data, err := json.Marshal(art)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestLoadForest_PredictMean(t *testing.T) {
	path := writeTempFile(t, "model.json", testForestJSON(t))

	forest, err := LoadForest(path)
	if err != nil {
		t.Fatalf("LoadForest failed: %v", err)
	}
	if forest.NumFeatures() != 7 {
		t.Errorf("NumFeatures = %d, want 7", forest.NumFeatures())
	}

	// Feature 0 below the split: mean of (2.0, 3.0).
	got, err := forest.Predict([]float64{0, 1, 2, 3, 4, 5, 6})
	if err != nil {
		t.Fatal(err)
	}
	if got != 2.5 {
		t.Errorf("Predict = %v, want 2.5", got)
	}

	// Feature 0 above the split: mean of (4.0, 3.0).
	got, err = forest.Predict([]float64{1, 1, 2, 3, 4, 5, 6})
	if err != nil {
		t.Fatal(err)
	}
	if got != 3.5 {
		t.Errorf("Predict = %v, want 3.5", got)
	}
}

func TestForest_PredictShapeMismatch(t *testing.T) {
	path := writeTempFile(t, "model.json", testForestJSON(t))
	forest, err := LoadForest(path)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := forest.Predict([]float64{1, 2, 3}); err == nil {
		t.Error("expected error for short feature vector")
	}
	if _, err := forest.Predict(nil); err == nil {
		t.Error("expected error for nil feature vector")
	}
}

func TestLoadForest_Invalid(t *testing.T) {
	cases := map[string][]byte{
		"not json":      []byte("{nope"),
		"wrong format":  []byte(`{"format":"something-else/v9","n_features":7,"trees":[{"nodes":[{"feature":-1,"value":1}]}]}`),
		"no trees":      []byte(`{"format":"gdp-scenario-forest/v1","n_features":7,"trees":[]}`),
		"zero features": []byte(`{"format":"gdp-scenario-forest/v1","n_features":0,"trees":[{"nodes":[{"feature":-1,"value":1}]}]}`),
		"bad feature":   []byte(`{"format":"gdp-scenario-forest/v1","n_features":2,"trees":[{"nodes":[{"feature":5,"threshold":0,"left":1,"right":1},{"feature":-1,"value":1}]}]}`),
		"bad child":     []byte(`{"format":"gdp-scenario-forest/v1","n_features":2,"trees":[{"nodes":[{"feature":0,"threshold":0,"left":9,"right":1},{"feature":-1,"value":1}]}]}`),
		"self child":    []byte(`{"format":"gdp-scenario-forest/v1","n_features":2,"trees":[{"nodes":[{"feature":0,"threshold":0,"left":0,"right":0}]}]}`),
		"empty tree":    []byte(`{"format":"gdp-scenario-forest/v1","n_features":2,"trees":[{"nodes":[]}]}`),
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			path := writeTempFile(t, "model.json", data)
			if _, err := LoadForest(path); err == nil {
				t.Error("expected load to fail")
			}
		})
	}
}

func TestLoadForest_MissingFile(t *testing.T) {
	if _, err := LoadForest(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadForest_Zstd(t *testing.T) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatal(err)
	}
	compressed := enc.EncodeAll(testForestJSON(t), nil)
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}

	path := writeTempFile(t, "model.json.zst", compressed)
	forest, err := LoadForest(path)
	if err != nil {
		t.Fatalf("LoadForest on zstd artifact failed: %v", err)
	}
	if forest.NumFeatures() != 7 {
		t.Errorf("NumFeatures = %d, want 7", forest.NumFeatures())
	}
}

func TestLoadLabelEncoder(t *testing.T) {
	path := writeTempFile(t, "encoder.json", []byte(`{"classes":["Brazil","Chile","Peru"]}`))

	enc, err := LoadLabelEncoder(path)
	if err != nil {
		t.Fatalf("LoadLabelEncoder failed: %v", err)
	}

	code, err := enc.Encode("Chile")
	if err != nil {
		t.Fatal(err)
	}
	if code != 1 {
		t.Errorf("Encode(Chile) = %d, want 1", code)
	}

	// Stable across calls.
	again, _ := enc.Encode("Chile")
	if again != code {
		t.Errorf("Encode not deterministic: %d vs %d", again, code)
	}

	if _, err := enc.Encode("Atlantis"); !errors.Is(err, ErrUnknownCountry) {
		t.Errorf("expected ErrUnknownCountry, got %v", err)
	}
	// Exact match only.
	if _, err := enc.Encode("chile"); !errors.Is(err, ErrUnknownCountry) {
		t.Errorf("case-insensitive match should not encode, got %v", err)
	}
}

func TestLoadLabelEncoder_Invalid(t *testing.T) {
	cases := map[string][]byte{
		"empty classes": []byte(`{"classes":[]}`),
		"duplicate":     []byte(`{"classes":["Brazil","Brazil"]}`),
		"not json":      []byte(`classes`),
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			path := writeTempFile(t, "encoder.json", data)
			if _, err := LoadLabelEncoder(path); err == nil {
				t.Error("expected load to fail")
			}
		})
	}
}

func TestLabelEncoder_Sample(t *testing.T) {
	classes := []string{"a", "b", "c"}
	enc := NewLabelEncoder(classes)

	if got := enc.Sample(2); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("Sample(2) = %v", got)
	}
	if got := enc.Sample(10); len(got) != 3 {
		t.Errorf("Sample beyond vocabulary = %v, want all classes", got)
	}
}

func TestLoad_DegradedStart(t *testing.T) {
	// Only the encoder file exists; Load must still return a usable Set
	// with the failure captured in the model LoadResult.
	dir := t.TempDir()
	encPath := filepath.Join(dir, "encoder.json")
	if err := os.WriteFile(encPath, []byte(`{"classes":["Brazil"]}`), 0o600); err != nil {
		t.Fatal(err)
	}

	set, modelRes, encRes := Load(config.ArtifactConfig{
		ModelPath:   filepath.Join(dir, "absent.json"),
		EncoderPath: encPath,
	})

	if set.Ready() {
		t.Error("Set with missing model must not be ready")
	}
	if set.Encoder == nil {
		t.Error("encoder should have loaded")
	}
	if modelRes.Loaded || modelRes.Err == nil {
		t.Errorf("model result = %+v, want failure", modelRes)
	}
	if !encRes.Loaded || encRes.Err != nil {
		t.Errorf("encoder result = %+v, want success", encRes)
	}
}

func TestStore_Replace(t *testing.T) {
	store := NewStore(nil)
	if store.Current() == nil {
		t.Fatal("Current must never return nil")
	}
	if store.Current().Ready() {
		t.Error("empty set must not be ready")
	}

	next := &Set{Encoder: NewLabelEncoder([]string{"Brazil"})}
	store.Replace(next)
	if store.Current() != next {
		t.Error("Replace did not swap the active set")
	}

	store.Replace(nil)
	if store.Current() == nil {
		t.Error("Replace(nil) must install an empty set, not nil")
	}
}

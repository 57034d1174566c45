// Package artifact loads the pre-trained artifacts the scenario pipeline
// depends on: the GDP regression model and the country label encoder. Both
// are opaque, pre-built files with a fixed contract; this package never
// trains or mutates them.
//
// Artifacts are loaded once at process start. A missing or corrupt artifact
// is not fatal: the service starts with the corresponding readiness flag set
// to false and every simulation request answers with a readiness error.
package artifact

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"github.com/klauspost/compress/zstd"

	"econsim/internal/config"
)

// Predictor is the fixed contract of the pre-trained regression model:
// an ordered feature vector in, one scalar GDP growth prediction out.
// The only intrinsic error condition is a shape mismatch.
type Predictor interface {
	Predict(features []float64) (float64, error)
	// NumFeatures returns the feature vector length the model was trained with.
	NumFeatures() int
}

// CountryEncoder is the fixed contract of the pre-trained categorical
// encoder: a deterministic bijection from country name to integer code.
type CountryEncoder interface {
	// Encode returns the integer code for name, or ErrUnknownCountry if the
	// name was not in the training vocabulary.
	Encode(name string) (int, error)
	// Classes returns the full vocabulary in the encoder's internal ordering.
	Classes() []string
}

// Set is one immutable pair of loaded artifacts. Either field may be nil if
// the corresponding file could not be loaded.
type Set struct {
	Predictor Predictor
	Encoder   CountryEncoder
}

// Ready reports whether both artifacts loaded successfully. Simulation is
// refused unless both are present.
func (s *Set) Ready() bool {
	return s != nil && s.Predictor != nil && s.Encoder != nil
}

// Store holds the currently active artifact Set behind an atomic pointer.
// Request handling reads a snapshot once and uses it for the whole request;
// a management reload swaps in a fresh Set without disturbing in-flight
// requests.
type Store struct {
	current atomic.Pointer[Set]
}

// NewStore creates a Store holding the given initial Set.
func NewStore(initial *Set) *Store {
	st := &Store{}
	if initial == nil {
		initial = &Set{}
	}
	st.current.Store(initial)
	return st
}

// Current returns the active artifact Set. Never nil.
func (st *Store) Current() *Set {
	return st.current.Load()
}

// Replace atomically swaps in a new Set.
func (st *Store) Replace(next *Set) {
	if next == nil {
		next = &Set{}
	}
	st.current.Store(next)
}

// LoadResult reports the outcome of loading one artifact.
type LoadResult struct {
	Path   string
	Loaded bool
	Err    error
}

// Load reads both artifacts from the configured paths. Load never returns an
// error: a failed artifact leaves its Set field nil and its LoadResult
// carries the cause, mirroring the degraded-but-running startup contract.
func Load(cfg config.ArtifactConfig) (*Set, LoadResult, LoadResult) {
	set := &Set{}

	modelRes := LoadResult{Path: cfg.ModelPath}
	if p, err := LoadForest(cfg.ModelPath); err != nil {
		modelRes.Err = err
	} else {
		set.Predictor = p
		modelRes.Loaded = true
	}

	encRes := LoadResult{Path: cfg.EncoderPath}
	if e, err := LoadLabelEncoder(cfg.EncoderPath); err != nil {
		encRes.Err = err
	} else {
		set.Encoder = e
		encRes.Loaded = true
	}

	return set, modelRes, encRes
}

// readArtifactFile reads a file, transparently decompressing it when the
// path carries a .zst suffix.
func readArtifactFile(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ".zst") {
		return raw, nil
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("creating zstd decoder: %w", err)
	}
	defer dec.Close()
	out, err := dec.DecodeAll(raw, nil)
	if err != nil {
		return nil, fmt.Errorf("decompressing %s: %w", path, err)
	}
	return out, nil
}

package artifact

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownCountry is returned by Encode for names outside the training
// vocabulary. Callers should surface the encoder's class sample alongside it.
var ErrUnknownCountry = errors.New("country not in training vocabulary")

// SampleSize is the number of vocabulary entries exposed to callers in
// unknown-country errors. The full list is intentionally withheld.
const SampleSize = 10

// labelEncoderArtifact is the on-disk encoder format: the ordered class list
// of the trained categorical encoder. The integer code of a class is its
// position in this list.
type labelEncoderArtifact struct {
	Classes []string `json:"classes"`
}

// LabelEncoder is a fixed, pre-trained bijection from country name to integer
// code. Immutable after load; safe for concurrent use.
type LabelEncoder struct {
	classes []string
	codes   map[string]int
}

// LoadLabelEncoder reads and validates an encoder artifact.
func LoadLabelEncoder(path string) (*LabelEncoder, error) {
	data, err := readArtifactFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading encoder artifact: %w", err)
	}

	var art labelEncoderArtifact
	if err := json.Unmarshal(data, &art); err != nil {
		return nil, fmt.Errorf("parsing encoder artifact %s: %w", path, err)
	}
	if len(art.Classes) == 0 {
		return nil, fmt.Errorf("encoder artifact %s: empty class list", path)
	}

	codes := make(map[string]int, len(art.Classes))
	for i, c := range art.Classes {
		if _, dup := codes[c]; dup {
			return nil, fmt.Errorf("encoder artifact %s: duplicate class %q", path, c)
		}
		codes[c] = i
	}

	return &LabelEncoder{classes: art.Classes, codes: codes}, nil
}

// NewLabelEncoder builds an encoder directly from an ordered class list.
// Used by tests and tooling; production encoders come from LoadLabelEncoder.
func NewLabelEncoder(classes []string) *LabelEncoder {
	codes := make(map[string]int, len(classes))
	for i, c := range classes {
		codes[c] = i
	}
	return &LabelEncoder{classes: classes, codes: codes}
}

// Encode returns the integer code for name. The same name always yields the
// same code for the lifetime of the loaded artifact.
func (e *LabelEncoder) Encode(name string) (int, error) {
	code, ok := e.codes[name]
	if !ok {
		return 0, fmt.Errorf("%q: %w", name, ErrUnknownCountry)
	}
	return code, nil
}

// Classes returns the vocabulary in the encoder's internal class ordering.
// The returned slice must not be modified.
func (e *LabelEncoder) Classes() []string {
	return e.classes
}

// Sample returns the first n classes in internal ordering, or all classes if
// fewer exist. Used to give callers a hint at valid values without exposing
// the full vocabulary.
func (e *LabelEncoder) Sample(n int) []string {
	if n > len(e.classes) {
		n = len(e.classes)
	}
	return e.classes[:n]
}

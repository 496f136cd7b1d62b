package pi

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// GoldenData represents the structure of our golden file entries.
type GoldenData struct {
	Digits uint64 `json:"digits"`
	Result string `json:"result"`
}

func loadGolden(t *testing.T) []GoldenData {
	t.Helper()
	goldenPath := filepath.Join("testdata", "pi_golden.json")
	file, err := os.Open(goldenPath)
	if err != nil {
		t.Fatalf("Failed to open golden file: %v. Did you run 'go run ./cmd/generate-golden'?", err)
	}
	defer file.Close()

	var cases []GoldenData
	if err := json.NewDecoder(file).Decode(&cases); err != nil {
		t.Fatalf("Failed to decode golden file: %v", err)
	}
	return cases
}

func TestCalculatorsAgainstGoldenFile(t *testing.T) {
	cases := loadGolden(t)
	factory := NewDefaultFactory()
	ctx := context.Background()

	for _, name := range factory.List() {
		calc := factory.MustGet(name)
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			for _, tc := range cases {
				tc := tc
				t.Run(fmt.Sprintf("D=%d", tc.Digits), func(t *testing.T) {
					t.Parallel()
					got, err := calc.Calculate(ctx, nil, 0, tc.Digits, Options{})
					if err != nil {
						t.Fatalf("Calculation failed for %d digits: %v", tc.Digits, err)
					}
					if got.String() != tc.Result {
						t.Errorf("Mismatch for %d digits.\nExpected: %s\nGot:      %s", tc.Digits, tc.Result, got.String())
					}
				})
			}
		})
	}
}

// TestGoldenPrefixConsistency checks that every golden entry is a prefix of
// the longest one, which catches a corrupted golden file.
func TestGoldenPrefixConsistency(t *testing.T) {
	cases := loadGolden(t)
	longest := cases[0]
	for _, c := range cases {
		if c.Digits > longest.Digits {
			longest = c
		}
	}
	for _, c := range cases {
		if longest.Result[:len(c.Result)] != c.Result {
			t.Errorf("golden entry for %d digits is not a prefix of the %d-digit entry", c.Digits, longest.Digits)
		}
	}
}

package product

import (
	"math"
	"testing"

	pkgerrors "github.com/ecotrackhq/ecotrack-backend/pkg/errors"
)

func TestNormalizeSustainableRatioClamps(t *testing.T) {
	cases := []struct {
		name string
		in   float64
		want float64
	}{
		{"above range", 1.5, 1.00},
		{"below range", -0.5, 0.00},
		{"in range", 0.85, 0.85},
		{"rounds to 2dp", 0.333333, 0.33},
		{"zero allowed", 0, 0.00},
		{"one allowed", 1, 1.00},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizeSustainableRatio(tc.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("NormalizeSustainableRatio(%v) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalizeSustainableRatioRejectsNonFinite(t *testing.T) {
	for _, in := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := NormalizeSustainableRatio(in)
		if err == nil {
			t.Fatalf("expected error for %v", in)
		}
		appErr := pkgerrors.As(err)
		if appErr == nil || appErr.Code() != pkgerrors.CodeInvalidNumber {
			t.Fatalf("expected InvalidNumber code, got %v", err)
		}
	}
}

func TestNormalizeImportedSustainableRatioDividesPercentages(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{85, 0.85},   // percentage form
		{100, 1.00},  // upper percentage bound
		{0.85, 0.85}, // already a ratio
		{1, 1.00},    // ratio upper bound, not divided
		{150, 1.00},  // beyond percentage range, clamped
	}
	for _, tc := range cases {
		got, err := NormalizeImportedSustainableRatio(tc.in)
		if err != nil {
			t.Fatalf("unexpected error for %v: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("NormalizeImportedSustainableRatio(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeWeight(t *testing.T) {
	cases := []struct {
		name string
		in   float64
		want float64
	}{
		{"exact zero preserved", 0, 0},
		{"below floor raised", 0.0005, 0.001},
		{"above cap lowered", 15, 10},
		{"in range", 2.5, 2.5},
		{"rounds to 3dp", 0.12345, 0.123},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizeWeight(tc.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("NormalizeWeight(%v) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestParseMetricValue(t *testing.T) {
	got, err := ParseMetricValue(" 0.4 ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0.4 {
		t.Fatalf("ParseMetricValue = %v, want 0.4", got)
	}

	_, err = ParseMetricValue("forty")
	if err == nil {
		t.Fatal("expected error for non-numeric input")
	}
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeInvalidNumber {
		t.Fatalf("expected InvalidNumber code, got %v", err)
	}
}

func TestParseLocallyProduced(t *testing.T) {
	for _, raw := range []string{"true", "TRUE", "1", "yes", " Yes "} {
		if !ParseLocallyProduced(raw) {
			t.Fatalf("ParseLocallyProduced(%q) = false, want true", raw)
		}
	}
	for _, raw := range []string{"false", "0", "no", "", "maybe"} {
		if ParseLocallyProduced(raw) {
			t.Fatalf("ParseLocallyProduced(%q) = true, want false", raw)
		}
	}
}

func TestPackagingRatio(t *testing.T) {
	f := func(v float64) *float64 { return &v }

	got := PackagingRatio(f(0.4), f(2.0))
	if got == nil || *got != 0.2 {
		t.Fatalf("PackagingRatio(0.4, 2.0) = %v, want 0.2", got)
	}

	if got := PackagingRatio(f(0.4), f(0)); got != nil {
		t.Fatalf("PackagingRatio(x, 0) = %v, want nil", *got)
	}
	if got := PackagingRatio(f(0.4), nil); got != nil {
		t.Fatalf("PackagingRatio(x, nil) = %v, want nil", *got)
	}
	if got := PackagingRatio(nil, f(2.0)); got != nil {
		t.Fatalf("PackagingRatio(nil, y) = %v, want nil", *got)
	}

	got = PackagingRatio(f(0), f(2.0))
	if got == nil || *got != 0 {
		t.Fatalf("PackagingRatio(0, 2.0) = %v, want 0", got)
	}
}

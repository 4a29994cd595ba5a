package product

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	pkgerrors "github.com/ecotrackhq/ecotrack-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

// Valid domains for the tracked metric fields.
const (
	RatioMin  = 0.0
	RatioMax  = 1.0
	WeightMin = 0.001
	WeightMax = 10.0
)

// ParseMetricValue parses a raw metafield string into a number.
func ParseMetricValue(raw string) (float64, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeInvalidNumber, fmt.Sprintf("value %q is not a number", raw))
	}
	return value, nil
}

// NormalizeSustainableRatio clamps a sustainable-materials ratio into
// [0.00, 1.00] at 2-decimal precision.
func NormalizeSustainableRatio(value float64) (float64, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, pkgerrors.New(pkgerrors.CodeInvalidNumber, "sustainable ratio is not a finite number")
	}
	return roundTo(clamp(value, RatioMin, RatioMax), 2), nil
}

// NormalizeImportedSustainableRatio is the bulk-import variant: values in
// (1, 100] are read as percentages and divided by 100 before clamping.
func NormalizeImportedSustainableRatio(value float64) (float64, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, pkgerrors.New(pkgerrors.CodeInvalidNumber, "sustainable ratio is not a finite number")
	}
	if value > RatioMax && value <= 100 {
		value = value / 100
	}
	return NormalizeSustainableRatio(value)
}

// NormalizeWeight clamps a weight in kg into [0.001, 10] at 3-decimal
// precision. An exact 0 means "not yet set" and is preserved, never raised to
// the floor.
func NormalizeWeight(value float64) (float64, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, pkgerrors.New(pkgerrors.CodeInvalidNumber, "weight is not a finite number")
	}
	if value == 0 {
		return 0, nil
	}
	return roundTo(clamp(value, WeightMin, WeightMax), 3), nil
}

// ParseLocallyProduced reads the locally-produced flag from its string forms.
// Anything outside {"true", "1", "yes"} is false, never an error.
func ParseLocallyProduced(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}

// PackagingRatio derives packaging weight over product weight at 4-decimal
// precision. Nil when the product weight is unknown or zero; that is an
// undefined ratio, not an error.
func PackagingRatio(packagingKg, productKg *float64) *float64 {
	if packagingKg == nil || productKg == nil || *productKg == 0 {
		return nil
	}
	ratio := roundTo(*packagingKg / *productKg, 4)
	return &ratio
}

func clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

func roundTo(value float64, places int32) float64 {
	return decimal.NewFromFloat(value).Round(places).InexactFloat64()
}

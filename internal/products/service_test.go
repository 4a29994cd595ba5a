package product

import (
	"math"
	"testing"

	pkgerrors "github.com/ecotrackhq/ecotrack-backend/pkg/errors"
	"github.com/ecotrackhq/ecotrack-backend/pkg/shopify"
)

func floatPtr(v float64) *float64 { return &v }
func boolPtr(v bool) *bool        { return &v }

func TestNormalizeInputClampsEditorValues(t *testing.T) {
	input := UpdateMetricsInput{
		SustainableMaterials: floatPtr(1.5),
		PackagingWeightKg:    floatPtr(0.0005),
		ProductWeightKg:      floatPtr(15),
	}

	out, err := normalizeInput(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *out.SustainableMaterials != 1.00 {
		t.Fatalf("expected ratio clamped to 1.00, got %v", *out.SustainableMaterials)
	}
	if *out.PackagingWeightKg != 0.001 {
		t.Fatalf("expected packaging weight floor 0.001, got %v", *out.PackagingWeightKg)
	}
	if *out.ProductWeightKg != 10 {
		t.Fatalf("expected product weight cap 10, got %v", *out.ProductWeightKg)
	}
}

func TestNormalizeInputImportPercentages(t *testing.T) {
	out, err := normalizeInput(UpdateMetricsInput{
		SustainableMaterials: floatPtr(85),
		FromImport:           true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *out.SustainableMaterials != 0.85 {
		t.Fatalf("expected 85 read as 0.85 on import, got %v", *out.SustainableMaterials)
	}

	// Without the import flag, 85 is just clamped.
	out, err = normalizeInput(UpdateMetricsInput{SustainableMaterials: floatPtr(85)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *out.SustainableMaterials != 1.00 {
		t.Fatalf("expected 85 clamped to 1.00 without import flag, got %v", *out.SustainableMaterials)
	}
}

func TestNormalizeInputRejectsInvalidNumbers(t *testing.T) {
	nan := math.NaN()
	_, err := normalizeInput(UpdateMetricsInput{SustainableMaterials: &nan})
	if err == nil {
		t.Fatal("expected InvalidNumber error")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeInvalidNumber {
		t.Fatalf("expected InvalidNumber code, got %v", err)
	}
}

func TestInputFromMetafieldsSkipsMalformedValues(t *testing.T) {
	input := inputFromMetafields(map[string]string{
		shopify.KeySustainableMaterials: "not-a-number",
		shopify.KeyLocallyProduced:      "yes",
		shopify.KeyPackagingWeight:      "0.4",
		shopify.KeyProductWeight:        "2.0",
	})

	if input.SustainableMaterials != nil {
		t.Fatalf("expected malformed ratio to be skipped, got %v", *input.SustainableMaterials)
	}
	if input.LocallyProduced == nil || !*input.LocallyProduced {
		t.Fatal("expected locally produced = true")
	}
	if input.PackagingWeightKg == nil || *input.PackagingWeightKg != 0.4 {
		t.Fatalf("expected packaging weight 0.4, got %v", input.PackagingWeightKg)
	}
	if input.ProductWeightKg == nil || *input.ProductWeightKg != 2.0 {
		t.Fatalf("expected product weight 2.0, got %v", input.ProductWeightKg)
	}
}

func TestMetafieldInputsRendersProvidedFieldsOnly(t *testing.T) {
	inputs := metafieldInputs(UpdateMetricsInput{
		SustainableMaterials: floatPtr(0.85),
		LocallyProduced:      boolPtr(true),
	})

	if len(inputs) != 2 {
		t.Fatalf("expected 2 metafield writes, got %d", len(inputs))
	}
	byKey := map[string]shopify.MetafieldInput{}
	for _, in := range inputs {
		byKey[in.Key] = in
	}
	if byKey[shopify.KeySustainableMaterials].Value != "0.85" {
		t.Fatalf("expected ratio value 0.85, got %q", byKey[shopify.KeySustainableMaterials].Value)
	}
	if byKey[shopify.KeySustainableMaterials].Type != "number_decimal" {
		t.Fatalf("expected number_decimal type, got %q", byKey[shopify.KeySustainableMaterials].Type)
	}
	if byKey[shopify.KeyLocallyProduced].Value != "true" {
		t.Fatalf("expected boolean value true, got %q", byKey[shopify.KeyLocallyProduced].Value)
	}
	if byKey[shopify.KeyLocallyProduced].Type != "boolean" {
		t.Fatalf("expected boolean type, got %q", byKey[shopify.KeyLocallyProduced].Type)
	}
}

package metrics

import (
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestSinkExportsProductGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink := NewSustainabilitySink(reg)

	labels := ProductLabels{ProductID: "42", Title: "Hemp Tote", StoreID: "store-1"}
	sink.SetProductStatus(labels, true)
	sink.SetProductSustainableMaterials(labels, 0.85)
	sink.SetProductPackagingRatio(labels, 0.2)
	sink.SetProductLocallyProduced(labels, true)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	checks := map[string]float64{
		"ecotrack_product_status":                      1,
		"ecotrack_product_sustainable_materials_ratio": 0.85,
		"ecotrack_product_packaging_ratio":             0.2,
		"ecotrack_product_locally_produced":            1,
	}
	for name, want := range checks {
		got, err := fetchGaugeValue(mfs, name, "product_id", "42")
		if err != nil {
			t.Fatalf("fetch %s: %v", name, err)
		}
		if got != want {
			t.Fatalf("%s: expected %f got %f", name, want, got)
		}
	}
}

func TestRemoveProductDropsAllSeries(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink := NewSustainabilitySink(reg)

	labels := ProductLabels{ProductID: "42", Title: "Hemp Tote", StoreID: "store-1"}
	sink.SetProductStatus(labels, true)
	sink.SetProductSustainableMaterials(labels, 0.85)
	sink.RemoveProduct(labels)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range mfs {
		if len(mf.GetMetric()) != 0 {
			t.Fatalf("expected no series after removal, %s still has %d", mf.GetName(), len(mf.GetMetric()))
		}
	}
}

func TestStoreGaugesAndAverageRemoval(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink := NewSustainabilitySink(reg)

	labels := StoreLabels{StoreID: "store-1", Name: "green", Domain: "green.myshopify.com"}
	sink.SetStoreProductCount(labels, 12)
	sink.SetStoreAvgSustainableMaterials(labels, 0.5)
	sink.RemoveStoreAvgSustainableMaterials(labels)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchGaugeValue(mfs, "ecotrack_store_product_count", "store_id", "store-1"); err != nil {
		t.Fatalf("fetch product count: %v", err)
	} else if got != 12 {
		t.Fatalf("expected count 12, got %f", got)
	}

	if _, err := fetchGaugeValue(mfs, "ecotrack_store_avg_sustainable_materials_ratio", "store_id", "store-1"); err == nil {
		t.Fatal("expected average series removed")
	}
}

func TestNilSinkIsSafe(t *testing.T) {
	var sink *SustainabilitySink
	sink.SetProductStatus(ProductLabels{}, true)
	sink.RemoveProduct(ProductLabels{})
	sink.SetStoreProductCount(StoreLabels{}, 1)

	empty := NewSustainabilitySink(nil)
	empty.SetProductStatus(ProductLabels{ProductID: "1"}, true)
}

func fetchGaugeValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			for _, pair := range metric.GetLabel() {
				if pair.GetName() == label && pair.GetValue() == value {
					return metric.GetGauge().GetValue(), nil
				}
			}
		}
	}
	return 0, fmt.Errorf("gauge %q with %s=%s not found", name, label, value)
}

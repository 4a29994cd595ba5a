package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ProductLabels identifies a per-product gauge series.
type ProductLabels struct {
	ProductID string
	Title     string
	StoreID   string
}

// StoreLabels identifies a per-store gauge series.
type StoreLabels struct {
	StoreID string
	Name    string
	Domain  string
}

// SustainabilitySink owns the live sustainability gauges. It is constructed
// once per process against an injected registerer and passed explicitly to the
// recorder and aggregator. All methods are nil-safe no-ops when the sink was
// built without a registerer.
type SustainabilitySink struct {
	productStatus          *prometheus.GaugeVec
	productSustainable     *prometheus.GaugeVec
	productPackagingRatio  *prometheus.GaugeVec
	productLocallyProduced *prometheus.GaugeVec

	storeProductCount   *prometheus.GaugeVec
	storeAvgSustainable *prometheus.GaugeVec
	storeLocalCount     *prometheus.GaugeVec
	storeAvgDistance    *prometheus.GaugeVec
}

var (
	productLabelNames = []string{"product_id", "title", "store_id"}
	storeLabelNames   = []string{"store_id", "name", "domain"}
)

// NewSustainabilitySink registers the sustainability gauges on the provided
// registerer.
func NewSustainabilitySink(reg prometheus.Registerer) *SustainabilitySink {
	if reg == nil {
		return &SustainabilitySink{}
	}

	s := &SustainabilitySink{
		productStatus: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ecotrack_product_status",
			Help: "Product status (1 = active).",
		}, productLabelNames),
		productSustainable: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ecotrack_product_sustainable_materials_ratio",
			Help: "Sustainable materials ratio per product (0-1).",
		}, productLabelNames),
		productPackagingRatio: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ecotrack_product_packaging_ratio",
			Help: "Packaging weight divided by product weight.",
		}, productLabelNames),
		productLocallyProduced: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ecotrack_product_locally_produced",
			Help: "Whether the product is locally produced (1/0).",
		}, productLabelNames),
		storeProductCount: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ecotrack_store_product_count",
			Help: "Number of tracked products per store.",
		}, storeLabelNames),
		storeAvgSustainable: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ecotrack_store_avg_sustainable_materials_ratio",
			Help: "Mean sustainable materials ratio over products with the field set.",
		}, storeLabelNames),
		storeLocalCount: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ecotrack_store_local_product_count",
			Help: "Number of locally produced products per store.",
		}, storeLabelNames),
		storeAvgDistance: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ecotrack_store_avg_delivery_distance_km",
			Help: "Rolling average delivery distance per store in kilometers.",
		}, storeLabelNames),
	}

	reg.MustRegister(
		s.productStatus,
		s.productSustainable,
		s.productPackagingRatio,
		s.productLocallyProduced,
		s.storeProductCount,
		s.storeAvgSustainable,
		s.storeLocalCount,
		s.storeAvgDistance,
	)

	return s
}

// SetProductStatus publishes the product status gauge (1 = active).
func (s *SustainabilitySink) SetProductStatus(labels ProductLabels, active bool) {
	setGauge(s.gaugeOrNil(s.productStatus), labels.values(), boolValue(active))
}

// SetProductSustainableMaterials publishes the per-product ratio gauge.
func (s *SustainabilitySink) SetProductSustainableMaterials(labels ProductLabels, ratio float64) {
	setGauge(s.gaugeOrNil(s.productSustainable), labels.values(), ratio)
}

// SetProductPackagingRatio publishes the per-product packaging ratio gauge.
func (s *SustainabilitySink) SetProductPackagingRatio(labels ProductLabels, ratio float64) {
	setGauge(s.gaugeOrNil(s.productPackagingRatio), labels.values(), ratio)
}

// SetProductLocallyProduced publishes the locally-produced flag gauge.
func (s *SustainabilitySink) SetProductLocallyProduced(labels ProductLabels, local bool) {
	setGauge(s.gaugeOrNil(s.productLocallyProduced), labels.values(), boolValue(local))
}

// RemoveProduct drops every per-product series for the given labels. Called
// when the platform reports the product deleted so the scrape surface does not
// keep exporting last-known values.
func (s *SustainabilitySink) RemoveProduct(labels ProductLabels) {
	if s == nil {
		return
	}
	values := labels.values()
	for _, vec := range []*prometheus.GaugeVec{
		s.productStatus,
		s.productSustainable,
		s.productPackagingRatio,
		s.productLocallyProduced,
	} {
		if vec != nil {
			vec.DeleteLabelValues(values...)
		}
	}
}

// SetStoreProductCount publishes the store product count gauge.
func (s *SustainabilitySink) SetStoreProductCount(labels StoreLabels, count float64) {
	setGauge(s.gaugeOrNil(s.storeProductCount), labels.values(), count)
}

// SetStoreAvgSustainableMaterials publishes the store average ratio gauge.
func (s *SustainabilitySink) SetStoreAvgSustainableMaterials(labels StoreLabels, ratio float64) {
	setGauge(s.gaugeOrNil(s.storeAvgSustainable), labels.values(), ratio)
}

// RemoveStoreAvgSustainableMaterials drops the average ratio series, used when
// no product has the field set (an average over an empty set is undefined).
func (s *SustainabilitySink) RemoveStoreAvgSustainableMaterials(labels StoreLabels) {
	if s == nil || s.storeAvgSustainable == nil {
		return
	}
	s.storeAvgSustainable.DeleteLabelValues(labels.values()...)
}

// SetStoreLocalProductCount publishes the local product count gauge.
func (s *SustainabilitySink) SetStoreLocalProductCount(labels StoreLabels, count float64) {
	setGauge(s.gaugeOrNil(s.storeLocalCount), labels.values(), count)
}

// SetStoreAvgDeliveryDistance publishes the average delivery distance gauge.
func (s *SustainabilitySink) SetStoreAvgDeliveryDistance(labels StoreLabels, km float64) {
	setGauge(s.gaugeOrNil(s.storeAvgDistance), labels.values(), km)
}

func (s *SustainabilitySink) gaugeOrNil(vec *prometheus.GaugeVec) *prometheus.GaugeVec {
	if s == nil {
		return nil
	}
	return vec
}

func setGauge(vec *prometheus.GaugeVec, labelValues []string, value float64) {
	if vec == nil {
		return
	}
	vec.WithLabelValues(labelValues...).Set(value)
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func (l ProductLabels) values() []string {
	return []string{l.ProductID, l.Title, l.StoreID}
}

func (l StoreLabels) values() []string {
	return []string{l.StoreID, l.Name, l.Domain}
}

package store

import "github.com/ecotrackhq/ecotrack-backend/pkg/db/models"

// Aggregates holds the store-wide figures derived from the current product
// set. Nil averages mean no product carried the field; an average over an
// empty set is undefined, never zero.
type Aggregates struct {
	ProductCount            int
	AvgSustainableMaterials *float64
	LocalProductCount       int
	AvgPackagingRatio       *float64
}

// ComputeAggregates derives the store aggregates from the full current
// product set. Products lacking a field are excluded from that field's
// denominator, not counted as zero.
func ComputeAggregates(products []models.Product) Aggregates {
	agg := Aggregates{ProductCount: len(products)}

	var (
		ratioSum   float64
		ratioCount int
		packSum    float64
		packCount  int
	)
	for i := range products {
		p := &products[i]
		if p.SustainableMaterials != nil {
			ratioSum += *p.SustainableMaterials
			ratioCount++
		}
		if p.LocallyProduced != nil && *p.LocallyProduced {
			agg.LocalProductCount++
		}
		if p.PackagingRatio != nil {
			packSum += *p.PackagingRatio
			packCount++
		}
	}
	if ratioCount > 0 {
		avg := ratioSum / float64(ratioCount)
		agg.AvgSustainableMaterials = &avg
	}
	if packCount > 0 {
		avg := packSum / float64(packCount)
		agg.AvgPackagingRatio = &avg
	}
	return agg
}

package report

import "math"

// ScoreInput carries the store aggregates the score is derived from. The
// percent fields are on a 0-100 scale. Nil averages count as zero.
type ScoreInput struct {
	SustainableMaterialsPercent float64
	LocalProductsPercent        float64
	AvgPackagingRatio           *float64
	AvgDeliveryDistanceKm       *float64
}

// Score computes the 0-100 sustainability score:
//
//	100 * (0.35*sm/100 + 0.25*local/100 + 0.25*max(0,1-avgPack*0.5) + 0.15*max(0,1-avgDist/200))
//
// rounded to the nearest integer.
func Score(input ScoreInput) int {
	avgPack := 0.0
	if input.AvgPackagingRatio != nil {
		avgPack = *input.AvgPackagingRatio
	}
	avgDist := 0.0
	if input.AvgDeliveryDistanceKm != nil {
		avgDist = *input.AvgDeliveryDistanceKm
	}

	score := 100 * (0.35*input.SustainableMaterialsPercent/100 +
		0.25*input.LocalProductsPercent/100 +
		0.25*math.Max(0, 1-avgPack*0.5) +
		0.15*math.Max(0, 1-avgDist/200))

	return int(math.Round(score))
}

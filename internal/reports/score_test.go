package report

import "testing"

func floatPtr(v float64) *float64 { return &v }

func TestScoreFormula(t *testing.T) {
	cases := []struct {
		name  string
		input ScoreInput
		want  int
	}{
		{
			name: "all perfect",
			input: ScoreInput{
				SustainableMaterialsPercent: 100,
				LocalProductsPercent:        100,
				AvgPackagingRatio:           floatPtr(0),
				AvgDeliveryDistanceKm:       floatPtr(0),
			},
			want: 100,
		},
		{
			name:  "all zero with no averages",
			input: ScoreInput{},
			// packaging and distance terms contribute fully when unknown
			want: 40,
		},
		{
			name: "mixed",
			input: ScoreInput{
				SustainableMaterialsPercent: 50,
				LocalProductsPercent:        40,
				AvgPackagingRatio:           floatPtr(0.4),
				AvgDeliveryDistanceKm:       floatPtr(100),
			},
			// 100*(0.175 + 0.10 + 0.25*0.8 + 0.15*0.5) = 55
			want: 55,
		},
		{
			name: "heavy packaging and distance floor at zero",
			input: ScoreInput{
				SustainableMaterialsPercent: 100,
				LocalProductsPercent:        0,
				AvgPackagingRatio:           floatPtr(5),
				AvgDeliveryDistanceKm:       floatPtr(1000),
			},
			// negative terms clamp to 0: 100*0.35 = 35
			want: 35,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Score(tc.input); got != tc.want {
				t.Fatalf("Score(%+v) = %d, want %d", tc.input, got, tc.want)
			}
		})
	}
}

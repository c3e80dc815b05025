package domain

import "github.com/shopspring/decimal"

type RatingSummary struct {
	Average float64
	Total   int
}

// AggregateRating derives the average (one decimal, half away from zero) and count
// from a review collection. An empty collection yields 0/0.
func AggregateRating(reviews []Review) RatingSummary {
	if len(reviews) == 0 {
		return RatingSummary{}
	}
	sum := int64(0)
	for _, r := range reviews {
		sum += int64(r.Rating)
	}
	avg := decimal.NewFromInt(sum).
		Div(decimal.NewFromInt(int64(len(reviews)))).
		Round(1)
	f, _ := avg.Float64()
	return RatingSummary{Average: f, Total: len(reviews)}
}

// ApplyRating recomputes the derived rating fields from p.Reviews.
func (p *Product) ApplyRating() {
	s := AggregateRating(p.Reviews)
	p.AverageRating = s.Average
	p.TotalReviews = s.Total
}

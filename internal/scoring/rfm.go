// Package scoring computes RFM sub-scores and the churn risk derived from them.
package scoring

import "github.com/opensource-finance/retention/internal/domain"

// band maps a threshold to a sub-score. Bands are evaluated in order and the
// first match wins; the fallback covers everything past the last band.
type band struct {
	limit float64
	score int
}

// Recency is "lower is better": a band matches when value <= limit.
var recencyBands = []band{
	{limit: 30, score: 5},
	{limit: 60, score: 4},
	{limit: 90, score: 3},
	{limit: 120, score: 2},
}

// Frequency and monetary are "higher is better": a band matches when value >= limit.
var frequencyBands = []band{
	{limit: 20, score: 5},
	{limit: 15, score: 4},
	{limit: 10, score: 3},
	{limit: 5, score: 2},
}

var monetaryBands = []band{
	{limit: 2000, score: 5},
	{limit: 1500, score: 4},
	{limit: 1000, score: 3},
	{limit: 500, score: 2},
}

// RScore buckets days since last purchase.
func RScore(recency int) int {
	return matchAtMost(float64(recency), recencyBands)
}

// FScore buckets the total purchase count.
func FScore(totalPurchases int) int {
	return matchAtLeast(float64(totalPurchases), frequencyBands)
}

// MScore buckets total spending.
func MScore(totalSpending float64) int {
	return matchAtLeast(totalSpending, monetaryBands)
}

// Score computes all three sub-scores for a record.
func Score(rec domain.CustomerRecord) domain.SubScores {
	return domain.SubScores{
		R: RScore(rec.Recency),
		F: FScore(rec.TotalPurchases()),
		M: MScore(rec.TotalSpending),
	}
}

// Aggregate returns R+F+M for a record.
func Aggregate(rec domain.CustomerRecord) int {
	return Score(rec).Aggregate()
}

func matchAtMost(value float64, bands []band) int {
	for _, b := range bands {
		if value <= b.limit {
			return b.score
		}
	}
	return domain.MinSubScore
}

func matchAtLeast(value float64, bands []band) int {
	for _, b := range bands {
		if value >= b.limit {
			return b.score
		}
	}
	return domain.MinSubScore
}

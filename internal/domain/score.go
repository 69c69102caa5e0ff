package domain

// Score bounds.
const (
	MinSubScore  = 1
	MaxSubScore  = 5
	MinAggregate = 3 * MinSubScore
	MaxAggregate = 3 * MaxSubScore
)

// SubScores holds the recency, frequency and monetary buckets, each in [1,5].
type SubScores struct {
	R int `json:"r"`
	F int `json:"f"`
	M int `json:"m"`
}

// Aggregate returns R+F+M, always in [3,15].
func (s SubScores) Aggregate() int {
	return s.R + s.F + s.M
}

// RiskTier is the discrete churn-risk bucket.
type RiskTier string

const (
	RiskLow    RiskTier = "Low Risk"
	RiskMedium RiskTier = "Medium Risk"
	RiskHigh   RiskTier = "High Risk"
)

// RiskTiers lists every tier, highest first.
func RiskTiers() []RiskTier {
	return []RiskTier{RiskHigh, RiskMedium, RiskLow}
}

// RiskAssessment is the churn risk derived from the aggregate score.
type RiskAssessment struct {
	// Percentage is rounded to two decimals, in [0,100].
	Percentage float64  `json:"percentage"`
	Tier       RiskTier `json:"tier"`
}

package scoring

import (
	"github.com/opensource-finance/retention/internal/domain"
	"github.com/shopspring/decimal"
)

// Tier thresholds on the rounded risk percentage.
var (
	highRiskThreshold   = decimal.NewFromInt(70)
	mediumRiskThreshold = decimal.NewFromInt(40)
)

var (
	hundred      = decimal.NewFromInt(100)
	maxAggregate = decimal.NewFromInt(domain.MaxAggregate)
)

// RiskPercentage returns round((1 - aggregate/15) * 100, 2).
func RiskPercentage(aggregate int) float64 {
	return riskDecimal(aggregate).InexactFloat64()
}

// Tier maps a risk percentage to its tier. First match wins: High, Medium, Low.
func Tier(pct float64) domain.RiskTier {
	return tierOf(decimal.NewFromFloat(pct))
}

// Assess derives the full risk assessment from an aggregate score.
func Assess(aggregate int) domain.RiskAssessment {
	pct := riskDecimal(aggregate)
	return domain.RiskAssessment{
		Percentage: pct.InexactFloat64(),
		Tier:       tierOf(pct),
	}
}

func riskDecimal(aggregate int) decimal.Decimal {
	ratio := decimal.NewFromInt(int64(aggregate)).Div(maxAggregate)
	return decimal.NewFromInt(1).Sub(ratio).Mul(hundred).Round(2)
}

func tierOf(pct decimal.Decimal) domain.RiskTier {
	switch {
	case pct.GreaterThanOrEqual(highRiskThreshold):
		return domain.RiskHigh
	case pct.GreaterThanOrEqual(mediumRiskThreshold):
		return domain.RiskMedium
	default:
		return domain.RiskLow
	}
}

// Package advisor maps a segment and a risk tier to a retention action.
package advisor

import (
	"fmt"

	"github.com/opensource-finance/retention/internal/domain"
)

// Retention actions.
const (
	ActionVIPRetention   = "VIP retention, personal outreach, exclusive benefits"
	ActionAggressiveDeal = "Aggressive limited-time discounts & reminders"
	ActionWinBack        = "Win-back campaign or cost-controlled exit"
	ActionEngagement     = "Engagement nudges, personalized recommendations"
	ActionLoyalty        = "Loyalty rewards, cross-sell & upsell"
)

// Action returns the recommended action for a segment name and risk tier.
// Only the High row looks at the segment; an unrecognized segment takes the
// win-back branch there. Medium and Low ignore the segment. Anything that is
// not High or Medium gets the Low row.
func Action(segmentName string, tier domain.RiskTier) string {
	switch tier {
	case domain.RiskHigh:
		switch segmentName {
		case domain.SegmentLoyalHighValue.Name():
			return ActionVIPRetention
		case domain.SegmentDealDrivenActive.Name():
			return ActionAggressiveDeal
		default:
			return ActionWinBack
		}
	case domain.RiskMedium:
		return ActionEngagement
	default:
		return ActionLoyalty
	}
}

// Recommend is Action over the typed segment.
func Recommend(segment domain.Segment, tier domain.RiskTier) string {
	return Action(segment.Name(), tier)
}

// Table returns the full decision table, keyed by tier then segment name.
func Table() map[domain.RiskTier]map[string]string {
	table := make(map[domain.RiskTier]map[string]string, len(domain.RiskTiers()))
	for _, tier := range domain.RiskTiers() {
		row := make(map[string]string, len(domain.Segments()))
		for _, seg := range domain.Segments() {
			row[seg.Name()] = Recommend(seg, tier)
		}
		table[tier] = row
	}
	return table
}

func init() {
	for _, tier := range domain.RiskTiers() {
		for _, seg := range domain.Segments() {
			if seg.Name() == "" || Recommend(seg, tier) == "" {
				panic(fmt.Sprintf("advisor: no action for segment %d at %s", seg.ClusterID(), tier))
			}
		}
	}
}

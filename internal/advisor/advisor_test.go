package advisor

import (
	"testing"

	"github.com/opensource-finance/retention/internal/domain"
)

func TestAction(t *testing.T) {
	tests := []struct {
		name    string
		segment string
		tier    domain.RiskTier
		want    string
	}{
		{"LoyalHigh", "Loyal High-Value Customers", domain.RiskHigh, ActionVIPRetention},
		{"DealHigh", "Deal-Driven Active Customers", domain.RiskHigh, ActionAggressiveDeal},
		{"LowValueHigh", "Low-Value Passive Customers", domain.RiskHigh, ActionWinBack},
		{"UnknownHigh", "Someone Else", domain.RiskHigh, ActionWinBack},
		{"DealMedium", "Deal-Driven Active Customers", domain.RiskMedium, ActionEngagement},
		{"LoyalMedium", "Loyal High-Value Customers", domain.RiskMedium, ActionEngagement},
		{"UnknownMedium", "", domain.RiskMedium, ActionEngagement},
		{"LowValueLow", "Low-Value Passive Customers", domain.RiskLow, ActionLoyalty},
		{"LoyalLow", "Loyal High-Value Customers", domain.RiskLow, ActionLoyalty},
		{"UnknownTier", "Loyal High-Value Customers", domain.RiskTier("Extreme"), ActionLoyalty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Action(tt.segment, tt.tier); got != tt.want {
				t.Errorf("Action(%q, %q) = %q, want %q", tt.segment, tt.tier, got, tt.want)
			}
		})
	}
}

func TestActionLiteralText(t *testing.T) {
	if got := Action("Loyal High-Value Customers", "High Risk"); got != "VIP retention, personal outreach, exclusive benefits" {
		t.Errorf("unexpected text: %q", got)
	}
	if got := Action("Deal-Driven Active Customers", "Medium Risk"); got != "Engagement nudges, personalized recommendations" {
		t.Errorf("unexpected text: %q", got)
	}
	if got := Action("Low-Value Passive Customers", "Low Risk"); got != "Loyalty rewards, cross-sell & upsell" {
		t.Errorf("unexpected text: %q", got)
	}
}

func TestTable(t *testing.T) {
	table := Table()

	if len(table) != 3 {
		t.Fatalf("expected 3 tiers, got %d", len(table))
	}

	for tier, row := range table {
		if len(row) != len(domain.Segments()) {
			t.Errorf("tier %s: expected %d segments, got %d", tier, len(domain.Segments()), len(row))
		}
	}

	for _, seg := range domain.Segments() {
		if table[domain.RiskMedium][seg.Name()] != ActionEngagement {
			t.Errorf("medium row must ignore segment, got %q for %s", table[domain.RiskMedium][seg.Name()], seg)
		}
		if table[domain.RiskLow][seg.Name()] != ActionLoyalty {
			t.Errorf("low row must ignore segment, got %q for %s", table[domain.RiskLow][seg.Name()], seg)
		}
	}

	if table[domain.RiskHigh][domain.SegmentLowValuePassive.Name()] != ActionWinBack {
		t.Error("expected win-back for low-value segment at high risk")
	}
}

package scoring

import (
	"testing"

	"github.com/opensource-finance/retention/internal/domain"
)

func TestRScore(t *testing.T) {
	tests := []struct {
		recency int
		want    int
	}{
		{0, 5},
		{30, 5},
		{31, 4},
		{60, 4},
		{61, 3},
		{90, 3},
		{91, 2},
		{120, 2},
		{121, 1},
		{10000, 1},
	}

	for _, tt := range tests {
		if got := RScore(tt.recency); got != tt.want {
			t.Errorf("RScore(%d) = %d, want %d", tt.recency, got, tt.want)
		}
	}
}

func TestRScoreNonIncreasing(t *testing.T) {
	prev := RScore(0)
	for r := 1; r <= 400; r++ {
		got := RScore(r)
		if got < domain.MinSubScore || got > domain.MaxSubScore {
			t.Fatalf("RScore(%d) = %d out of range", r, got)
		}
		if got > prev {
			t.Fatalf("RScore increased at %d: %d -> %d", r, prev, got)
		}
		prev = got
	}
}

func TestFScore(t *testing.T) {
	tests := []struct {
		purchases int
		want      int
	}{
		{0, 1},
		{4, 1},
		{5, 2},
		{9, 2},
		{10, 3},
		{14, 3},
		{15, 4},
		{19, 4},
		{20, 5},
		{500, 5},
	}

	for _, tt := range tests {
		if got := FScore(tt.purchases); got != tt.want {
			t.Errorf("FScore(%d) = %d, want %d", tt.purchases, got, tt.want)
		}
	}
}

func TestMScore(t *testing.T) {
	tests := []struct {
		spending float64
		want     int
	}{
		{0, 1},
		{499.99, 1},
		{500, 2},
		{999, 2},
		{1000, 3},
		{1499.5, 3},
		{1500, 4},
		{1999, 4},
		{2000, 5},
		{1e7, 5},
	}

	for _, tt := range tests {
		if got := MScore(tt.spending); got != tt.want {
			t.Errorf("MScore(%.2f) = %d, want %d", tt.spending, got, tt.want)
		}
	}
}

func TestFrequencyAndMonetaryNonDecreasing(t *testing.T) {
	prevF, prevM := FScore(0), MScore(0)
	for v := 1; v <= 3000; v++ {
		f, m := FScore(v), MScore(float64(v))
		if f < prevF {
			t.Fatalf("FScore decreased at %d", v)
		}
		if m < prevM {
			t.Fatalf("MScore decreased at %d", v)
		}
		prevF, prevM = f, m
	}
}

func TestScoreRecord(t *testing.T) {
	t.Run("HighValue", func(t *testing.T) {
		rec := domain.CustomerRecord{
			Recency:             10,
			NumWebPurchases:     5,
			NumStorePurchases:   5,
			NumCatalogPurchases: 5,
			NumDealsPurchases:   9, // not a purchase channel
			TotalSpending:       2500,
		}

		got := Score(rec)
		want := domain.SubScores{R: 5, F: 4, M: 5}
		if got != want {
			t.Errorf("expected %+v, got %+v", want, got)
		}
		if Aggregate(rec) != 14 {
			t.Errorf("expected aggregate 14, got %d", Aggregate(rec))
		}
	})

	t.Run("Lapsed", func(t *testing.T) {
		rec := domain.CustomerRecord{Recency: 150, TotalSpending: 100}

		got := Score(rec)
		if got != (domain.SubScores{R: 1, F: 1, M: 1}) {
			t.Errorf("expected all ones, got %+v", got)
		}
		if got.Aggregate() != domain.MinAggregate {
			t.Errorf("expected aggregate %d, got %d", domain.MinAggregate, got.Aggregate())
		}
	})
}

func TestRiskPercentage(t *testing.T) {
	tests := []struct {
		aggregate int
		want      float64
	}{
		{3, 80.00},
		{4, 73.33},
		{5, 66.67},
		{9, 40.00},
		{14, 6.67},
		{15, 0.00},
	}

	for _, tt := range tests {
		if got := RiskPercentage(tt.aggregate); got != tt.want {
			t.Errorf("RiskPercentage(%d) = %v, want %v", tt.aggregate, got, tt.want)
		}
	}
}

func TestRiskPercentageMonotonic(t *testing.T) {
	prev := RiskPercentage(domain.MinAggregate)
	for agg := domain.MinAggregate + 1; agg <= domain.MaxAggregate; agg++ {
		got := RiskPercentage(agg)
		if got >= prev {
			t.Fatalf("RiskPercentage(%d) = %v not below %v", agg, got, prev)
		}
		if got < 0 || got > 100 {
			t.Fatalf("RiskPercentage(%d) = %v out of range", agg, got)
		}
		prev = got
	}
}

func TestTier(t *testing.T) {
	tests := []struct {
		pct  float64
		want domain.RiskTier
	}{
		{100, domain.RiskHigh},
		{70, domain.RiskHigh},
		{69.99, domain.RiskMedium},
		{40, domain.RiskMedium},
		{39.99, domain.RiskLow},
		{0, domain.RiskLow},
	}

	for _, tt := range tests {
		if got := Tier(tt.pct); got != tt.want {
			t.Errorf("Tier(%v) = %s, want %s", tt.pct, got, tt.want)
		}
	}
}

func TestAssess(t *testing.T) {
	t.Run("LowRisk", func(t *testing.T) {
		got := Assess(14)
		if got.Percentage != 6.67 || got.Tier != domain.RiskLow {
			t.Errorf("expected 6.67/Low, got %+v", got)
		}
	})

	t.Run("HighRisk", func(t *testing.T) {
		got := Assess(3)
		if got.Percentage != 80.0 || got.Tier != domain.RiskHigh {
			t.Errorf("expected 80/High, got %+v", got)
		}
	})

	t.Run("MediumBoundary", func(t *testing.T) {
		got := Assess(9)
		if got.Percentage != 40.0 || got.Tier != domain.RiskMedium {
			t.Errorf("expected 40/Medium, got %+v", got)
		}
	})
}

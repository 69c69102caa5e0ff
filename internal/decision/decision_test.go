package decision

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/opensource-finance/retention/internal/advisor"
	"github.com/opensource-finance/retention/internal/domain"
	"github.com/opensource-finance/retention/internal/model"
	"github.com/opensource-finance/retention/internal/rules"
	"github.com/opensource-finance/retention/internal/segment"
)

type fixedModel struct{ id int }

func (m fixedModel) Predict(rows [][]float64) ([]int, error) {
	out := make([]int, len(rows))
	for i := range out {
		out[i] = m.id
	}
	return out, nil
}

func testScaler() *model.StandardScaler {
	return &model.StandardScaler{
		Features: []string{domain.FeatureTotalSpending, domain.FeatureNumDealsPurchases},
		Mean:     []float64{1000, 2},
		Scale:    []float64{500, 2},
	}
}

func newTestProcessor(t *testing.T, cm domain.ClusterModel) *Processor {
	t.Helper()

	classifier, err := segment.NewClassifier(testScaler(), cm, segment.WithVersion("test"))
	if err != nil {
		t.Fatalf("NewClassifier failed: %v", err)
	}
	engine, err := rules.NewDefaultEngine()
	if err != nil {
		t.Fatalf("NewDefaultEngine failed: %v", err)
	}
	proc, err := NewProcessor(engine, classifier)
	if err != nil {
		t.Fatalf("NewProcessor failed: %v", err)
	}
	return proc
}

func testKMeans() *model.KMeans {
	return &model.KMeans{Centroids: [][]float64{{-1, -1}, {2, -0.5}, {0, 2}}}
}

func TestProcessor(t *testing.T) {
	proc := newTestProcessor(t, testKMeans())
	ctx := context.Background()

	t.Run("LoyalLowRisk", func(t *testing.T) {
		input := &Input{
			TraceID:   "trace-001",
			StartTime: time.Now(),
			Record: domain.CustomerRecord{
				Recency:             10,
				TotalSpending:       2500,
				NumWebPurchases:     5,
				NumStorePurchases:   5,
				NumCatalogPurchases: 5,
				NumDealsPurchases:   1,
				Income:              80000,
				Age:                 45,
			},
		}

		rec, err := proc.Process(ctx, input)
		if err != nil {
			t.Fatalf("Process failed: %v", err)
		}

		if rec.SubScores != (domain.SubScores{R: 5, F: 4, M: 5}) {
			t.Errorf("unexpected sub-scores %+v", rec.SubScores)
		}
		if rec.RFMScore != 14 {
			t.Errorf("expected aggregate 14, got %d", rec.RFMScore)
		}
		if rec.Risk.Percentage != 6.67 || rec.Risk.Tier != domain.RiskLow {
			t.Errorf("unexpected risk %+v", rec.Risk)
		}
		if rec.Segment != domain.SegmentLoyalHighValue || rec.ClusterID != 1 {
			t.Errorf("expected cluster 1, got %d (%s)", rec.ClusterID, rec.Segment)
		}
		if rec.Action != advisor.ActionLoyalty {
			t.Errorf("unexpected action %q", rec.Action)
		}
		if rec.ID == "" {
			t.Error("expected recommendation ID")
		}
		if rec.Metadata.TraceID != "trace-001" {
			t.Errorf("expected traceID 'trace-001', got '%s'", rec.Metadata.TraceID)
		}
		if rec.Metadata.ModelVersion != "test" {
			t.Errorf("expected model version 'test', got '%s'", rec.Metadata.ModelVersion)
		}
		if rec.ScoreDisplay() != "14 / 15" {
			t.Errorf("unexpected score display %q", rec.ScoreDisplay())
		}
		if rec.RiskDisplay() != "6.67%" {
			t.Errorf("unexpected risk display %q", rec.RiskDisplay())
		}
	})

	t.Run("LapsedHighRisk", func(t *testing.T) {
		rec, err := proc.Process(ctx, &Input{Record: domain.CustomerRecord{
			Recency:       150,
			TotalSpending: 100,
			Income:        20000,
			Age:           30,
		}})
		if err != nil {
			t.Fatalf("Process failed: %v", err)
		}

		if rec.RFMScore != 3 {
			t.Errorf("expected aggregate 3, got %d", rec.RFMScore)
		}
		if rec.Risk.Percentage != 80 || rec.Risk.Tier != domain.RiskHigh {
			t.Errorf("unexpected risk %+v", rec.Risk)
		}
		if rec.Segment != domain.SegmentLowValuePassive {
			t.Errorf("expected Low-Value Passive, got %s", rec.Segment)
		}
		if rec.Action != advisor.ActionWinBack {
			t.Errorf("unexpected action %q", rec.Action)
		}
	})

	t.Run("DealDrivenHighRisk", func(t *testing.T) {
		rec, err := proc.Process(ctx, &Input{Record: domain.CustomerRecord{
			Recency:           150,
			TotalSpending:     100,
			NumDealsPurchases: 8,
			Income:            20000,
			Age:               30,
		}})
		if err != nil {
			t.Fatalf("Process failed: %v", err)
		}

		if rec.Segment != domain.SegmentDealDrivenActive {
			t.Errorf("expected Deal-Driven Active, got %s", rec.Segment)
		}
		if rec.Action != advisor.ActionAggressiveDeal {
			t.Errorf("unexpected action %q", rec.Action)
		}
	})

	t.Run("ConstraintViolation", func(t *testing.T) {
		_, err := proc.Process(ctx, &Input{Record: domain.CustomerRecord{Income: 5000, Age: 30}})
		if !errors.Is(err, domain.ErrInputConstraint) {
			t.Errorf("expected ErrInputConstraint, got %v", err)
		}
	})

	t.Run("Deterministic", func(t *testing.T) {
		in := domain.CustomerRecord{Recency: 45, TotalSpending: 1200, NumStorePurchases: 12, Income: 40000, Age: 50}
		a, err := proc.Process(ctx, &Input{Record: in})
		if err != nil {
			t.Fatalf("Process failed: %v", err)
		}
		b, err := proc.Process(ctx, &Input{Record: in})
		if err != nil {
			t.Fatalf("Process failed: %v", err)
		}
		if a.ClusterID != b.ClusterID || a.RFMScore != b.RFMScore || a.Risk != b.Risk || a.Action != b.Action {
			t.Errorf("repeat runs disagree: %+v vs %+v", a, b)
		}
	})
}

func TestProcessUnknownCluster(t *testing.T) {
	proc := newTestProcessor(t, fixedModel{id: 3})

	_, err := proc.Process(context.Background(), &Input{Record: domain.CustomerRecord{Income: 20000, Age: 30}})
	if !errors.Is(err, domain.ErrUnknownCluster) {
		t.Errorf("expected ErrUnknownCluster, got %v", err)
	}
}

func TestNewProcessorRequiresClassifier(t *testing.T) {
	if _, err := NewProcessor(nil, nil); err == nil {
		t.Error("expected error for nil classifier")
	}
}

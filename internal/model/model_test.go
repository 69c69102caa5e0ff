package model

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/opensource-finance/retention/internal/domain"
)

const testBundleYAML = `
name: test-segmentation
version: "2"
scaler:
  feature_names: [Recency, Total_Spending]
  mean: [50, 1000]
  scale: [25, 500]
kmeans:
  centroids:
    - [1, -1]
    - [-1, 1]
    - [0, 0]
`

func TestStandardScaler(t *testing.T) {
	s := &StandardScaler{
		Features: []string{"a", "b", "c"},
		Mean:     []float64{10, 0, 5},
		Scale:    []float64{2, 4, 0},
	}

	if err := s.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	t.Run("Transform", func(t *testing.T) {
		out, err := s.Transform([][]float64{{12, 8, 7}})
		if err != nil {
			t.Fatalf("Transform failed: %v", err)
		}
		want := []float64{1, 2, 2} // zero scale only centers
		for i := range want {
			if math.Abs(out[0][i]-want[i]) > 1e-12 {
				t.Errorf("column %d: expected %v, got %v", i, want[i], out[0][i])
			}
		}
	})

	t.Run("WrongWidth", func(t *testing.T) {
		if _, err := s.Transform([][]float64{{1, 2}}); err == nil {
			t.Error("expected error for short row")
		}
	})

	t.Run("FeatureNamesCopy", func(t *testing.T) {
		names := s.FeatureNames()
		names[0] = "mutated"
		if s.Features[0] != "a" {
			t.Error("FeatureNames must not expose internal slice")
		}
	})

	t.Run("InvalidDims", func(t *testing.T) {
		bad := &StandardScaler{Features: []string{"a"}, Mean: []float64{1, 2}, Scale: []float64{1}}
		if err := bad.Validate(); err == nil {
			t.Error("expected dimension error")
		}
	})

	t.Run("DuplicateFeature", func(t *testing.T) {
		bad := &StandardScaler{Features: []string{"a", "a"}, Mean: []float64{0, 0}, Scale: []float64{1, 1}}
		if err := bad.Validate(); err == nil {
			t.Error("expected duplicate feature error")
		}
	})
}

func TestKMeansPredict(t *testing.T) {
	k := &KMeans{Centroids: [][]float64{{0, 0}, {10, 10}, {0, 10}}}

	labels, err := k.Predict([][]float64{{1, 1}, {9, 9}, {1, 9}, {5, 5}})
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}

	// {5,5} is equidistant from all three; the lowest index wins
	want := []int{0, 1, 2, 0}
	for i := range want {
		if labels[i] != want[i] {
			t.Errorf("row %d: expected %d, got %d", i, want[i], labels[i])
		}
	}

	if _, err := k.Predict([][]float64{{1}}); err == nil {
		t.Error("expected error for wrong dimension")
	}

	empty := &KMeans{}
	if _, err := empty.Predict([][]float64{{1, 1}}); err == nil {
		t.Error("expected error for empty model")
	}
}

func TestDecode(t *testing.T) {
	t.Run("YAML", func(t *testing.T) {
		b, err := Decode([]byte(testBundleYAML), domain.FormatYAML)
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		if b.Name != "test-segmentation" || b.Version != "2" {
			t.Errorf("unexpected identity %s@%s", b.Name, b.Version)
		}
		if len(b.KMeans.Centroids) != 3 {
			t.Errorf("expected 3 centroids, got %d", len(b.KMeans.Centroids))
		}
	})

	t.Run("DimensionMismatch", func(t *testing.T) {
		data := `
scaler:
  feature_names: [a, b]
  mean: [0, 0]
  scale: [1, 1]
kmeans:
  centroids: [[1, 2, 3]]
`
		if _, err := Decode([]byte(data), domain.FormatYAML); err == nil {
			t.Error("expected mismatch error")
		}
	})

	t.Run("UnknownFormat", func(t *testing.T) {
		if _, err := Decode([]byte("{}"), "pickle"); err == nil {
			t.Error("expected error for unsupported format")
		}
	})
}

func TestArtifactRoundTrip(t *testing.T) {
	b, err := Decode([]byte(testBundleYAML), domain.FormatYAML)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	a, err := b.ToArtifact()
	if err != nil {
		t.Fatalf("ToArtifact failed: %v", err)
	}
	if a.Format != domain.FormatJSON {
		t.Errorf("expected json payload, got %s", a.Format)
	}

	back, err := FromArtifact(a)
	if err != nil {
		t.Fatalf("FromArtifact failed: %v", err)
	}
	if back.Scaler.Features[1] != "Total_Spending" {
		t.Errorf("unexpected features: %v", back.Scaler.Features)
	}
}

func TestFingerprint(t *testing.T) {
	b, err := Decode([]byte(testBundleYAML), domain.FormatYAML)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	fp := b.Fingerprint()
	if len(fp) != 16 {
		t.Fatalf("expected 16 hex chars, got %q", fp)
	}

	renamed := *b
	renamed.Name, renamed.Version = "other", ""
	if renamed.Fingerprint() != fp {
		t.Error("name and version must not change the fingerprint")
	}

	changed, _ := Decode([]byte(testBundleYAML), domain.FormatYAML)
	changed.KMeans.Centroids[2][0] = 0.5
	if changed.Fingerprint() == fp {
		t.Error("different centroids must change the fingerprint")
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "bundle.yml")
	if err := os.WriteFile(path, []byte(testBundleYAML), 0o644); err != nil {
		t.Fatalf("failed to write bundle: %v", err)
	}

	b, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if b.Version != "2" {
		t.Errorf("expected version 2, got %s", b.Version)
	}

	if _, err := LoadFile(filepath.Join(dir, "bundle.pkl")); err == nil {
		t.Error("expected error for unsupported extension")
	}
	if _, err := LoadFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

type stubRepo struct {
	artifacts map[string]*domain.ModelArtifact
	latest    *domain.ModelArtifact
}

func (r *stubRepo) SaveArtifact(ctx context.Context, a *domain.ModelArtifact) error { return nil }

func (r *stubRepo) GetArtifact(ctx context.Context, name, version string) (*domain.ModelArtifact, error) {
	a, ok := r.artifacts[version]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return a, nil
}

func (r *stubRepo) LatestArtifact(ctx context.Context, name string) (*domain.ModelArtifact, error) {
	if r.latest == nil {
		return nil, domain.ErrNotFound
	}
	return r.latest, nil
}

func (r *stubRepo) ListArtifacts(ctx context.Context, name string) ([]*domain.ModelArtifact, error) {
	return nil, nil
}

func (r *stubRepo) Ping(ctx context.Context) error { return nil }
func (r *stubRepo) Close() error                   { return nil }

func TestLoadFromRepository(t *testing.T) {
	ctx := context.Background()

	b, _ := Decode([]byte(testBundleYAML), domain.FormatYAML)
	a, _ := b.ToArtifact()
	repo := &stubRepo{artifacts: map[string]*domain.ModelArtifact{"2": a}, latest: a}

	t.Run("Latest", func(t *testing.T) {
		got, err := LoadFromRepository(ctx, repo, "test-segmentation", "")
		if err != nil {
			t.Fatalf("LoadFromRepository failed: %v", err)
		}
		if got.Version != "2" {
			t.Errorf("expected version 2, got %s", got.Version)
		}
	})

	t.Run("MissingVersion", func(t *testing.T) {
		_, err := LoadFromRepository(ctx, repo, "test-segmentation", "9")
		if !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestShippedBundle(t *testing.T) {
	b, err := LoadFile(filepath.Join("..", "..", "models", "segmentation.yaml"))
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	known := make(map[string]bool)
	for _, name := range domain.FeatureNames() {
		known[name] = true
	}
	for _, name := range b.Scaler.FeatureNames() {
		if !known[name] {
			t.Errorf("bundle expects unknown column %s", name)
		}
	}
	if len(b.KMeans.Centroids) != len(domain.Segments()) {
		t.Fatalf("expected %d centroids, got %d", len(domain.Segments()), len(b.KMeans.Centroids))
	}

	tests := []struct {
		name string
		rec  domain.CustomerRecord
		want int
	}{
		{
			name: "LoyalSpender",
			rec: domain.CustomerRecord{
				Recency: 10, TotalSpending: 2500, NumWebPurchases: 5, NumStorePurchases: 5,
				NumCatalogPurchases: 5, NumDealsPurchases: 1, NumWebVisitsMonth: 3, Income: 60000, Age: 40,
			},
			want: 1,
		},
		{
			name: "LapsedLowSpender",
			rec:  domain.CustomerRecord{Recency: 150, TotalSpending: 100, Income: 20000, Age: 30},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			features := tt.rec.Features()
			row := make([]float64, 0, len(b.Scaler.Features))
			for _, name := range b.Scaler.Features {
				row = append(row, features[name])
			}

			scaled, err := b.Scaler.Transform([][]float64{row})
			if err != nil {
				t.Fatalf("Transform failed: %v", err)
			}
			ids, err := b.KMeans.Predict(scaled)
			if err != nil {
				t.Fatalf("Predict failed: %v", err)
			}
			if ids[0] != tt.want {
				t.Errorf("expected cluster %d, got %d", tt.want, ids[0])
			}
		})
	}
}

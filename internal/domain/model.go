package domain

import "time"

// FeatureScaler is the externally trained feature-scaling transform.
type FeatureScaler interface {
	// FeatureNames returns the ordered columns Transform expects.
	FeatureNames() []string

	// Transform scales each row. Rows must follow FeatureNames order.
	Transform(rows [][]float64) ([][]float64, error)
}

// ClusterModel is the externally trained clustering model.
type ClusterModel interface {
	// Predict assigns a cluster id to each scaled row.
	Predict(rows [][]float64) ([]int, error)
}

// ModelArtifact is a stored, serialized model bundle.
type ModelArtifact struct {
	Name      string    `json:"name"`
	Version   string    `json:"version"`
	Format    string    `json:"format"` // "json" or "yaml"
	Payload   []byte    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

// Artifact payload formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

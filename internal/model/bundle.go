package model

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"hash"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/opensource-finance/retention/internal/domain"
	"gopkg.in/yaml.v3"
)

// Bundle is a scaler and clustering model trained together.
type Bundle struct {
	Name    string         `json:"name" yaml:"name"`
	Version string         `json:"version" yaml:"version"`
	Scaler  StandardScaler `json:"scaler" yaml:"scaler"`
	KMeans  KMeans         `json:"kmeans" yaml:"kmeans"`
}

// Validate checks each artifact and that they agree on dimension.
func (b *Bundle) Validate() error {
	if err := b.Scaler.Validate(); err != nil {
		return err
	}
	if err := b.KMeans.Validate(); err != nil {
		return err
	}
	if b.KMeans.Dim() != len(b.Scaler.Features) {
		return fmt.Errorf("bundle: scaler has %d features, centroids have %d",
			len(b.Scaler.Features), b.KMeans.Dim())
	}
	return nil
}

// Fingerprint identifies the bundle by its parameters: feature names, scaler
// statistics and centroids. Name and version do not contribute, so two
// differently trained bundles never share a fingerprint even when both
// leave the version empty.
func (b *Bundle) Fingerprint() string {
	h := sha256.New()
	writeLen(h, len(b.Scaler.Features))
	for _, f := range b.Scaler.Features {
		writeLen(h, len(f))
		h.Write([]byte(f))
	}
	writeFloats(h, b.Scaler.Mean)
	writeFloats(h, b.Scaler.Scale)
	writeLen(h, len(b.KMeans.Centroids))
	for _, c := range b.KMeans.Centroids {
		writeFloats(h, c)
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

func writeLen(h hash.Hash, n int) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(n))
	h.Write(buf[:])
}

func writeFloats(h hash.Hash, vs []float64) {
	writeLen(h, len(vs))
	var buf [8]byte
	for _, v := range vs {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		h.Write(buf[:])
	}
}

// Decode parses a bundle in the given format and validates it.
func Decode(data []byte, format string) (*Bundle, error) {
	var b Bundle
	switch format {
	case domain.FormatYAML:
		if err := yaml.Unmarshal(data, &b); err != nil {
			return nil, fmt.Errorf("failed to parse yaml bundle: %w", err)
		}
	case domain.FormatJSON:
		if err := json.Unmarshal(data, &b); err != nil {
			return nil, fmt.Errorf("failed to parse json bundle: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported bundle format: %s", format)
	}

	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &b, nil
}

// LoadFile reads a bundle from disk. The format follows the file extension.
func LoadFile(path string) (*Bundle, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bundle: %w", err)
	}
	return Decode(data, format)
}

// FormatFromPath maps .yaml/.yml to yaml and .json to json.
func FormatFromPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return domain.FormatYAML, nil
	case ".json":
		return domain.FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported bundle file extension: %s", path)
	}
}

// ToArtifact serializes the bundle as JSON for the artifact repository.
func (b *Bundle) ToArtifact() (*domain.ModelArtifact, error) {
	payload, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("failed to encode bundle: %w", err)
	}
	return &domain.ModelArtifact{
		Name:      b.Name,
		Version:   b.Version,
		Format:    domain.FormatJSON,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// FromArtifact decodes a stored artifact.
func FromArtifact(a *domain.ModelArtifact) (*Bundle, error) {
	b, err := Decode(a.Payload, a.Format)
	if err != nil {
		return nil, fmt.Errorf("artifact %s@%s: %w", a.Name, a.Version, err)
	}
	if b.Name == "" {
		b.Name = a.Name
	}
	if b.Version == "" {
		b.Version = a.Version
	}
	return b, nil
}

// LoadFromRepository fetches a stored bundle. An empty version means latest.
func LoadFromRepository(ctx context.Context, repo domain.ArtifactRepository, name, version string) (*Bundle, error) {
	var (
		a   *domain.ModelArtifact
		err error
	)
	if version == "" {
		a, err = repo.LatestArtifact(ctx, name)
	} else {
		a, err = repo.GetArtifact(ctx, name, version)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch artifact %s: %w", name, err)
	}
	return FromArtifact(a)
}

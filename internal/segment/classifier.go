// Package segment assigns customers to marketing segments using the
// externally trained scaler and clustering model.
package segment

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/opensource-finance/retention/internal/domain"
)

// Assignment is the outcome of classifying one record.
type Assignment struct {
	ClusterID int
	Segment   domain.Segment
	Cached    bool
}

// Classifier wraps the scaler and model. Both are read-only after
// construction, so a Classifier is safe for concurrent use.
type Classifier struct {
	scaler   domain.FeatureScaler
	model    domain.ClusterModel
	features []string
	version  string

	// Cache entries are scoped to name, version and parameter fingerprint
	name        string
	fingerprint string
	keyPrefix   string

	cache    domain.Cache
	cacheTTL time.Duration
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithCache memoizes cluster assignments. A nil cache disables memoization
// and a non-positive ttl keeps the one hour default.
func WithCache(cache domain.Cache, ttl time.Duration) Option {
	return func(c *Classifier) {
		c.cache = cache
		if ttl > 0 {
			c.cacheTTL = ttl
		}
	}
}

// WithVersion tags the classifier with the model version. The version is
// reported with every recommendation and scopes cache keys.
func WithVersion(version string) Option {
	return func(c *Classifier) {
		c.version = version
	}
}

// WithName scopes cache keys to the bundle name.
func WithName(name string) Option {
	return func(c *Classifier) {
		c.name = name
	}
}

// WithFingerprint scopes cache keys to the model parameters, so bundles
// that share a name and leave the version empty do not share assignments.
func WithFingerprint(fingerprint string) Option {
	return func(c *Classifier) {
		c.fingerprint = fingerprint
	}
}

// NewClassifier checks that every column the scaler expects is one a
// customer record can supply. Otherwise it fails with ErrInvalidFeatureSet.
func NewClassifier(scaler domain.FeatureScaler, model domain.ClusterModel, opts ...Option) (*Classifier, error) {
	if scaler == nil || model == nil {
		return nil, errors.New("segment: scaler and model are required")
	}

	names := scaler.FeatureNames()
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: scaler declares no features", domain.ErrInvalidFeatureSet)
	}

	known := make(map[string]bool)
	for _, name := range domain.FeatureNames() {
		known[name] = true
	}
	var unknown []string
	for _, name := range names {
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("%w: scaler expects columns no record provides: %s",
			domain.ErrInvalidFeatureSet, strings.Join(unknown, ", "))
	}

	c := &Classifier{
		scaler:   scaler,
		model:    model,
		features: names,
		cacheTTL: time.Hour,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.keyPrefix = "assign:" + c.name + "@" + c.version + ":" + c.fingerprint + ":"
	return c, nil
}

// FeatureNames returns the columns the model consumes, in model order.
func (c *Classifier) FeatureNames() []string {
	out := make([]string, len(c.features))
	copy(out, c.features)
	return out
}

// Version returns the model version the classifier was built with.
func (c *Classifier) Version() string {
	return c.version
}

// Vector selects and orders the model's columns from a named feature set.
// A missing column is an error; no default is substituted.
func (c *Classifier) Vector(features map[string]float64) ([]float64, error) {
	row := make([]float64, len(c.features))
	var missing []string
	for i, name := range c.features {
		v, ok := features[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		row[i] = v
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing columns %s", domain.ErrInvalidFeatureSet, strings.Join(missing, ", "))
	}
	return row, nil
}

// Classify scales the features, asks the model for a cluster and maps it to
// a segment. An id outside the catalog fails with ErrUnknownCluster.
func (c *Classifier) Classify(ctx context.Context, features map[string]float64) (*Assignment, error) {
	row, err := c.Vector(features)
	if err != nil {
		return nil, err
	}

	scaled, err := c.scaler.Transform([][]float64{row})
	if err != nil {
		return nil, fmt.Errorf("failed to scale features: %w", err)
	}
	if len(scaled) != 1 {
		return nil, fmt.Errorf("scaler returned %d rows for 1 input", len(scaled))
	}

	key := c.cacheKey(scaled[0])
	if id, ok := c.lookup(ctx, key); ok {
		seg, err := domain.SegmentFromCluster(id)
		if err == nil {
			return &Assignment{ClusterID: id, Segment: seg, Cached: true}, nil
		}
		// Stale or foreign entry; fall through to the model.
		slog.Warn("ignoring cached cluster assignment", "cluster_id", id, "error", err)
	}

	ids, err := c.model.Predict(scaled)
	if err != nil {
		return nil, fmt.Errorf("model prediction failed: %w", err)
	}
	if len(ids) != 1 {
		return nil, fmt.Errorf("model returned %d labels for 1 input", len(ids))
	}

	seg, err := domain.SegmentFromCluster(ids[0])
	if err != nil {
		return nil, err
	}

	c.store(ctx, key, ids[0])
	return &Assignment{ClusterID: ids[0], Segment: seg}, nil
}

// ClassifyRecord classifies a customer record.
func (c *Classifier) ClassifyRecord(ctx context.Context, rec domain.CustomerRecord) (*Assignment, error) {
	return c.Classify(ctx, rec.Features())
}

func (c *Classifier) lookup(ctx context.Context, key string) (int, bool) {
	if c.cache == nil {
		return 0, false
	}

	val, err := c.cache.Get(ctx, key)
	if err != nil {
		slog.Warn("cluster cache read failed", "error", err)
		return 0, false
	}
	if val == nil {
		return 0, false
	}

	id, err := strconv.Atoi(string(val))
	if err != nil {
		return 0, false
	}
	return id, true
}

func (c *Classifier) store(ctx context.Context, key string, id int) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Set(ctx, key, []byte(strconv.Itoa(id)), c.cacheTTL); err != nil {
		slog.Warn("cluster cache write failed", "error", err)
	}
}

// cacheKey hashes the exact bits of the scaled vector under the model's
// prefix.
func (c *Classifier) cacheKey(scaled []float64) string {
	h := sha256.New()
	buf := make([]byte, 0, 8)
	for _, v := range scaled {
		buf = strconv.AppendUint(buf[:0], math.Float64bits(v), 16)
		h.Write(buf)
		h.Write([]byte{','})
	}
	return c.keyPrefix + hex.EncodeToString(h.Sum(nil))
}

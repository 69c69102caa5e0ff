// Package decision runs the full retention pipeline for one customer:
// input constraints, RFM scoring, risk, segment and action.
package decision

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/opensource-finance/retention/internal/advisor"
	"github.com/opensource-finance/retention/internal/domain"
	"github.com/opensource-finance/retention/internal/scoring"
	"github.com/opensource-finance/retention/internal/segment"
)

var tracer = otel.Tracer("retention-decision")

// ConstraintChecker validates a record before it is scored.
type ConstraintChecker interface {
	Check(rec domain.CustomerRecord) error
}

// Processor orchestrates one prediction. It holds no per-request state.
type Processor struct {
	constraints ConstraintChecker
	classifier  *segment.Classifier
}

// NewProcessor creates a processor. A nil checker skips input constraints.
func NewProcessor(constraints ConstraintChecker, classifier *segment.Classifier) (*Processor, error) {
	if classifier == nil {
		return nil, errors.New("decision: classifier is required")
	}
	return &Processor{
		constraints: constraints,
		classifier:  classifier,
	}, nil
}

// Input contains all data needed for a decision.
type Input struct {
	TraceID   string
	Record    domain.CustomerRecord
	StartTime time.Time
}

// Process validates the record, scores it, classifies it and picks the
// retention action. The result is deterministic for a given record and
// model; only ID, timestamp and timings vary.
func (p *Processor) Process(ctx context.Context, input *Input) (*domain.Recommendation, error) {
	if input.StartTime.IsZero() {
		input.StartTime = time.Now()
	}

	ctx, span := tracer.Start(ctx, "decision.Process",
		trace.WithAttributes(attribute.String("trace.id", input.TraceID)),
	)
	defer span.End()

	if p.constraints != nil {
		if err := p.constraints.Check(input.Record); err != nil {
			span.SetStatus(codes.Error, "input constraint violated")
			return nil, err
		}
	}

	scoreStart := time.Now()
	subScores := scoring.Score(input.Record)
	aggregate := subScores.Aggregate()
	risk := scoring.Assess(aggregate)
	scoringMs := time.Since(scoreStart).Milliseconds()

	span.SetAttributes(
		attribute.Int("rfm.score", aggregate),
		attribute.Float64("risk.percentage", risk.Percentage),
		attribute.String("risk.tier", string(risk.Tier)),
	)

	segmentStart := time.Now()
	assignment, err := p.classify(ctx, input.Record)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "classification failed")
		return nil, err
	}
	segmentMs := time.Since(segmentStart).Milliseconds()

	action := advisor.Recommend(assignment.Segment, risk.Tier)
	span.SetAttributes(
		attribute.Int("segment.cluster_id", assignment.ClusterID),
		attribute.String("retention.action", action),
	)

	return &domain.Recommendation{
		ID:        uuid.New().String(),
		ClusterID: assignment.ClusterID,
		Segment:   assignment.Segment,
		SubScores: subScores,
		RFMScore:  aggregate,
		Risk:      risk,
		Action:    action,
		Timestamp: time.Now().UTC(),
		Metadata: domain.RecommendationMetadata{
			TraceID:      input.TraceID,
			ModelVersion: p.classifier.Version(),
			ScoringMs:    scoringMs,
			SegmentMs:    segmentMs,
			TotalMs:      time.Since(input.StartTime).Milliseconds(),
		},
	}, nil
}

func (p *Processor) classify(ctx context.Context, rec domain.CustomerRecord) (*segment.Assignment, error) {
	ctx, span := tracer.Start(ctx, "segment.Classify")
	defer span.End()

	assignment, err := p.classifier.ClassifyRecord(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("segment classification: %w", err)
	}
	span.SetAttributes(attribute.Bool("cache.hit", assignment.Cached))
	return assignment, nil
}

// ModelVersion returns the version of the model behind the processor.
func (p *Processor) ModelVersion() string {
	return p.classifier.Version()
}

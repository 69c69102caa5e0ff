package domain

import (
	"fmt"
	"time"
)

// Recommendation is the final output for one customer record.
type Recommendation struct {
	ID        string         `json:"id"`
	ClusterID int            `json:"clusterId"`
	Segment   Segment        `json:"-"`
	SubScores SubScores      `json:"subScores"`
	RFMScore  int            `json:"rfmScore"`
	Risk      RiskAssessment `json:"risk"`
	Action    string         `json:"action"`
	Timestamp time.Time      `json:"timestamp"`

	Metadata RecommendationMetadata `json:"metadata"`
}

// RecommendationMetadata contains processing information.
type RecommendationMetadata struct {
	TraceID      string `json:"traceId,omitempty"`
	ModelVersion string `json:"modelVersion,omitempty"`
	ScoringMs    int64  `json:"scoringMs"`
	SegmentMs    int64  `json:"segmentMs"`
	TotalMs      int64  `json:"totalMs"`
}

// ScoreDisplay renders the aggregate as "X / 15".
func (r *Recommendation) ScoreDisplay() string {
	return fmt.Sprintf("%d / %d", r.RFMScore, MaxAggregate)
}

// RiskDisplay renders the risk percentage as "X.XX%".
func (r *Recommendation) RiskDisplay() string {
	return fmt.Sprintf("%.2f%%", r.Risk.Percentage)
}

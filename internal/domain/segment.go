package domain

import "fmt"

// Segment is a marketing segment, one per cluster of the bundled model.
type Segment int

const (
	SegmentLowValuePassive Segment = iota
	SegmentLoyalHighValue
	SegmentDealDrivenActive

	segmentCount
)

type segmentInfo struct {
	name        string
	description string
}

// segmentTable is indexed by cluster id; its length is fixed by segmentCount.
var segmentTable = [segmentCount]segmentInfo{
	SegmentLowValuePassive: {
		name:        "Low-Value Passive Customers",
		description: "Low spending and low engagement customers. Focus on win-back or low-cost retention.",
	},
	SegmentLoyalHighValue: {
		name:        "Loyal High-Value Customers",
		description: "Highly valuable and loyal customers. Priority segment for retention and premium offers.",
	},
	SegmentDealDrivenActive: {
		name:        "Deal-Driven Active Customers",
		description: "Price-sensitive but active customers. Respond well to discounts and campaigns.",
	},
}

// Segments lists every segment in cluster id order.
func Segments() []Segment {
	out := make([]Segment, 0, segmentCount)
	for s := Segment(0); s < segmentCount; s++ {
		out = append(out, s)
	}
	return out
}

// SegmentFromCluster maps a model cluster id to its segment.
func SegmentFromCluster(clusterID int) (Segment, error) {
	if clusterID < 0 || clusterID >= int(segmentCount) {
		return 0, fmt.Errorf("%w: %d", ErrUnknownCluster, clusterID)
	}
	return Segment(clusterID), nil
}

// ClusterID returns the model cluster id of the segment.
func (s Segment) ClusterID() int {
	return int(s)
}

// Name returns the display name of the segment.
func (s Segment) Name() string {
	if !s.valid() {
		return ""
	}
	return segmentTable[s].name
}

// Description returns the static segment description.
func (s Segment) Description() string {
	if !s.valid() {
		return ""
	}
	return segmentTable[s].description
}

func (s Segment) String() string {
	if !s.valid() {
		return fmt.Sprintf("Segment(%d)", int(s))
	}
	return s.Name()
}

func (s Segment) valid() bool {
	return s >= 0 && s < segmentCount
}

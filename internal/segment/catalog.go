package segment

import "github.com/opensource-finance/retention/internal/domain"

// Info is the display entry of one segment.
type Info struct {
	ClusterID   int    `json:"clusterId"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Catalog lists every segment the classifier can produce.
func Catalog() []Info {
	segments := domain.Segments()
	out := make([]Info, 0, len(segments))
	for _, s := range segments {
		out = append(out, Info{
			ClusterID:   s.ClusterID(),
			Name:        s.Name(),
			Description: s.Description(),
		})
	}
	return out
}

package listing

import (
	"fmt"
	"strings"

	"github.com/welldanyogia/estate-intake-backend/internal/models"
)

// Policy names accepted by PolicyFromConfig
const (
	PolicyExact   = "exact"
	PolicyExclude = "exclude"
	PolicyStatus  = "status"
)

// DefaultViewableMarker is the cell value the office uses for open listings
const DefaultViewableMarker = "【内見可】"

// Policy decides whether a listing is open for viewing requests
type Policy interface {
	Viewable(p models.Property) bool
}

// ExactMarkerPolicy admits only listings whose cell equals Marker
// (surrounding whitespace ignored).
type ExactMarkerPolicy struct {
	Marker string
}

// Viewable implements Policy
func (p ExactMarkerPolicy) Viewable(prop models.Property) bool {
	return strings.TrimSpace(prop.Naiken) == p.Marker
}

// ExcludeMarkerPolicy admits every listing whose cell does not contain
// Marker. Unlike ExactMarkerPolicy this lets 準備中 listings through.
type ExcludeMarkerPolicy struct {
	Marker string
}

// Viewable implements Policy
func (p ExcludeMarkerPolicy) Viewable(prop models.Property) bool {
	return !strings.Contains(prop.Naiken, p.Marker)
}

// StatusPolicy admits listings whose parsed status is in Allowed
type StatusPolicy struct {
	Allowed []models.ViewingStatus
}

// Viewable implements Policy
func (p StatusPolicy) Viewable(prop models.Property) bool {
	status := prop.NaikenStatus
	if status == "" {
		status = models.ParseViewingStatus(prop.Naiken)
	}
	for _, s := range p.Allowed {
		if s == status {
			return true
		}
	}
	return false
}

// PolicyFromConfig builds the policy named by NAIKEN_POLICY. marker
// overrides the default marker of the exact and exclude policies; for the
// status policy it is a comma-separated list of status names.
func PolicyFromConfig(name, marker string) (Policy, error) {
	switch name {
	case "", PolicyExact:
		if marker == "" {
			marker = DefaultViewableMarker
		}
		return ExactMarkerPolicy{Marker: marker}, nil
	case PolicyExclude:
		if marker == "" {
			marker = models.MarkerNotViewable
		}
		return ExcludeMarkerPolicy{Marker: marker}, nil
	case PolicyStatus:
		if marker == "" {
			return StatusPolicy{Allowed: []models.ViewingStatus{models.ViewingStatusViewable}}, nil
		}
		var allowed []models.ViewingStatus
		for _, part := range strings.Split(marker, ",") {
			s, ok := models.ParseViewingStatusName(part)
			if !ok {
				return nil, fmt.Errorf("unknown viewing status %q", strings.TrimSpace(part))
			}
			allowed = append(allowed, s)
		}
		return StatusPolicy{Allowed: allowed}, nil
	default:
		return nil, fmt.Errorf("unknown naiken policy %q", name)
	}
}

// Filter returns the viewable listings, keeping their order
func Filter(props []models.Property, policy Policy) []models.Property {
	out := make([]models.Property, 0, len(props))
	for _, p := range props {
		if policy.Viewable(p) {
			out = append(out, p)
		}
	}
	return out
}

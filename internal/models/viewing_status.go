package models

import "strings"

// ViewingStatus is the enumerated form of the free-text 内見可否 cell
type ViewingStatus string

const (
	ViewingStatusViewable    ViewingStatus = "viewable"
	ViewingStatusNotViewable ViewingStatus = "not_viewable"
	ViewingStatusPreparing   ViewingStatus = "preparing"
	ViewingStatusUnknown     ViewingStatus = "unknown"
)

// Legacy substrings written into the listing sheet
const (
	MarkerViewable    = "内見可"
	MarkerNotViewable = "内見不可"
	MarkerPreparing   = "準備中"
)

// ParseViewingStatus maps a legacy free-text cell to a ViewingStatus.
// Preparing is checked before viewable: cells like 内見可(準備中) carry both.
func ParseViewingStatus(cell string) ViewingStatus {
	switch {
	case strings.Contains(cell, MarkerNotViewable):
		return ViewingStatusNotViewable
	case strings.Contains(cell, MarkerPreparing):
		return ViewingStatusPreparing
	case strings.Contains(cell, MarkerViewable):
		return ViewingStatusViewable
	default:
		return ViewingStatusUnknown
	}
}

// ParseViewingStatusName parses the enum's own string form
func ParseViewingStatusName(name string) (ViewingStatus, bool) {
	switch s := ViewingStatus(strings.TrimSpace(strings.ToLower(name))); s {
	case ViewingStatusViewable, ViewingStatusNotViewable, ViewingStatusPreparing, ViewingStatusUnknown:
		return s, true
	default:
		return "", false
	}
}

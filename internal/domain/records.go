package domain

import "time"

// ImageRecord is the canonical shape every imagery provider is normalized
// into. URL is always non-empty when a record is attached to a reply; records
// without a resource locator never leave the adapter layer.
type ImageRecord struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	URL         string     `json:"url"`
	CapturedAt  *time.Time `json:"captured_at,omitempty"`
	Credit      string     `json:"credit,omitempty"`
}

// SeverityTier buckets a Kp-style severity index for display.
type SeverityTier string

const (
	SeverityLow      SeverityTier = "low"
	SeverityModerate SeverityTier = "moderate"
	SeveritySevere   SeverityTier = "severe"
)

// WeatherImpact is one predicted impact within a space-weather simulation.
// SeverityIndex is a 0-9 ordinal used only for display, never for control flow.
type WeatherImpact struct {
	Location      string    `json:"location"`
	ArrivalTime   time.Time `json:"arrival_time"`
	SeverityIndex int       `json:"severity_index"`
}

// SeverityTier maps the index onto display tiers. Thresholds follow the
// usual Kp bands: above 5 is a storm, above 3 is unsettled.
func (i WeatherImpact) SeverityTier() SeverityTier {
	switch {
	case i.SeverityIndex > 5:
		return SeveritySevere
	case i.SeverityIndex > 3:
		return SeverityModerate
	default:
		return SeverityLow
	}
}

// WeatherEvent is one simulation run. An empty impact list is a valid
// "no predicted impacts" state.
type WeatherEvent struct {
	ObservedAt time.Time       `json:"observed_at"`
	Impacts    []WeatherImpact `json:"impacts"`
}

// SatelliteRecord carries a two-line element set. The TLE lines are opaque
// fixed-format strings; nothing in this system interprets them.
type SatelliteRecord struct {
	Name         string    `json:"name"`
	OrbitalLine1 string    `json:"orbital_line1"`
	OrbitalLine2 string    `json:"orbital_line2"`
	ObservedAt   time.Time `json:"observed_at"`
}

// ConversationMessage is one turn half (user or assistant) in a session's
// message log. Messages are immutable once appended and live only as long as
// the process.
type ConversationMessage struct {
	ID        MessageID
	SessionID SessionID
	Author    Role
	Text      string
	Images    []ImageRecord
	CreatedAt Timestamp
}

// Session represents one open conversation with the assistant. Sessions are
// never persisted; the log is discarded when the process ends.
type Session struct {
	ID        SessionID
	CreatedAt Timestamp
	UpdatedAt Timestamp
	Title     string
}

package domain

import "time"

// Trend is the coarse direction read off a chart screenshot.
type Trend string

const (
	TrendUp   Trend = "up"
	TrendDown Trend = "down"
)

func (t Trend) IsValid() bool {
	return t == TrendUp || t == TrendDown
}

// Arrow returns the display glyph used in outgoing messages.
func (t Trend) Arrow() string {
	if t == TrendUp {
		return "📈"
	}
	return "📉"
}

// Describe returns the word used when interpolating the trend into prose.
func (t Trend) Describe() string {
	if t == TrendUp {
		return "upward"
	}
	return "downward"
}

// ParseTrend accepts exactly the two literal trend tokens.
func ParseTrend(token string) (Trend, bool) {
	t := Trend(token)
	return t, t.IsValid()
}

// AnalysisResult is produced once per successfully analyzed chart image.
// Confidence is a percentage in [0, 100] with two-decimal precision.
type AnalysisResult struct {
	Trend      Trend   `json:"trend"`
	Confidence float64 `json:"confidence"`
}

type User struct {
	ID           int64
	Username     string
	FullName     string
	RegisteredAt time.Time
}

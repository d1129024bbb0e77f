package compaction

import "strings"

// Marker protocol. These strings, embedded in message text, are the only
// signal that content was already summarized.
const (
	SummaryMarker  = "[CONTEXT SUMMARY]"
	RollingTag     = "[ROLLING]"
	BuildingOnNote = "(Building on previous summary)"
)

// PerTurnText formats the text of a per-turn summary message.
func PerTurnText(summary string, buildsOnPrevious bool) string {
	var b strings.Builder
	b.WriteString(SummaryMarker)
	b.WriteString("\n")
	if buildsOnPrevious {
		b.WriteString(BuildingOnNote)
		b.WriteString("\n")
	}
	b.WriteString(summary)
	return b.String()
}

// RollingText formats the text of a rolling summary message.
func RollingText(summary string) string {
	return SummaryMarker + " " + RollingTag + "\n" + summary
}

// IsSummary reports whether text carries the summary marker.
func IsSummary(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), SummaryMarker)
}

// IsRollingSummary reports whether text is a rolling summary.
func IsRollingSummary(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), SummaryMarker+" "+RollingTag)
}

// StripMarker returns the summary body without the marker, rolling tag, or
// building-on note. Text without a marker is returned trimmed.
func StripMarker(text string) string {
	t := strings.TrimSpace(text)
	if !strings.HasPrefix(t, SummaryMarker) {
		return t
	}
	t = strings.TrimSpace(strings.TrimPrefix(t, SummaryMarker))
	t = strings.TrimSpace(strings.TrimPrefix(t, RollingTag))
	t = strings.TrimSpace(strings.TrimPrefix(t, BuildingOnNote))
	return t
}

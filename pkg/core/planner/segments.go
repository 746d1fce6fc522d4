package planner

import "time"

// Waakdienst weeks run Wednesday 17:00 to the next Wednesday 08:00. The
// gap (Wednesday 08:00-17:00) is the handover window and belongs to the
// incident rotation.
const (
	WaakdienstAnchor = time.Wednesday
	IncidentAnchor   = time.Monday

	BusinessStartHour = 8
	BusinessEndHour   = 17

	// WaakdienstWeekHours is the total coverage one waakdienst week
	// provides across its fixed segments
	WaakdienstWeekHours = 123.0

	// WaakdienstSegmentCount is the number of fixed segments per week
	WaakdienstSegmentCount = 12
)

// waakdienstPattern describes the fixed weekly coverage schedule as
// offsets from the Wednesday anchor. endDay/endHour may roll into the
// following calendar day for evening segments.
var waakdienstPattern = []struct {
	day       int // days after the Wednesday anchor
	startHour int
	endDay    int
	endHour   int
}{
	{0, 17, 1, 0}, // Wednesday evening, 7h
	{1, 0, 1, 8},  // Thursday night, 8h
	{1, 17, 2, 0}, // Thursday evening, 7h
	{2, 0, 2, 8},  // Friday night, 8h
	{2, 17, 3, 0}, // Friday evening, 7h
	{3, 0, 4, 0},  // Saturday, 24h
	{4, 0, 5, 0},  // Sunday, 24h
	{5, 0, 5, 8},  // Monday night, 8h
	{5, 17, 6, 0}, // Monday evening, 7h
	{6, 0, 6, 8},  // Tuesday night, 8h
	{6, 17, 7, 0}, // Tuesday evening, 7h
	{7, 0, 7, 8},  // Wednesday night, 8h - week end
}

// WaakdienstSegments builds the 12 fixed coverage segments for the week
// anchored on the given Wednesday. The segments sum to 123 hours and
// leave the Wednesday 08:00-17:00 handover window uncovered.
func WaakdienstSegments(weekStart time.Time) []Segment {
	anchor := DateOf(weekStart)
	segments := make([]Segment, 0, len(waakdienstPattern))

	for _, p := range waakdienstPattern {
		day := anchor.AddDate(0, 0, p.day)
		segments = append(segments, Segment{
			Date:  day,
			Start: day.Add(time.Duration(p.startHour) * time.Hour),
			End:   anchor.AddDate(0, 0, p.endDay).Add(time.Duration(p.endHour) * time.Hour),
		})
	}

	return segments
}

// BusinessHourSegments builds the five Monday-Friday business-hour blocks
// for the week anchored on the given Monday.
func BusinessHourSegments(monday time.Time) []Segment {
	anchor := DateOf(monday)
	segments := make([]Segment, 0, 5)

	for day := 0; day < 5; day++ {
		d := anchor.AddDate(0, 0, day)
		segments = append(segments, Segment{
			Date:  d,
			Start: d.Add(BusinessStartHour * time.Hour),
			End:   d.Add(BusinessEndHour * time.Hour),
		})
	}

	return segments
}

// CoverageDays returns the distinct calendar days a set of segments touches
func CoverageDays(segments []Segment) []time.Time {
	seen := make(map[time.Time]bool)
	var days []time.Time
	for _, s := range segments {
		d := DateOf(s.Date)
		if !seen[d] {
			seen[d] = true
			days = append(days, d)
		}
	}
	return days
}

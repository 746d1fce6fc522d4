package planner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wednesday(t *testing.T) time.Time {
	t.Helper()
	d := time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC)
	require.Equal(t, time.Wednesday, d.Weekday())
	return d
}

func monday(t *testing.T) time.Time {
	t.Helper()
	d := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	require.Equal(t, time.Monday, d.Weekday())
	return d
}

func TestWaakdienstSegments_TotalCoverage(t *testing.T) {
	segments := WaakdienstSegments(wednesday(t))

	require.Len(t, segments, WaakdienstSegmentCount)

	var total float64
	for _, s := range segments {
		total += s.Hours()
	}
	assert.Equal(t, WaakdienstWeekHours, total)
}

func TestWaakdienstSegments_HandoverWindowUncovered(t *testing.T) {
	start := wednesday(t)
	segments := WaakdienstSegments(start)

	// Both the anchor Wednesday and the closing Wednesday keep the
	// 08:00-17:00 business window free for handover
	for _, wed := range []time.Time{start, start.AddDate(0, 0, 7)} {
		windowStart := wed.Add(BusinessStartHour * time.Hour)
		windowEnd := wed.Add(BusinessEndHour * time.Hour)

		for _, s := range segments {
			overlaps := s.Start.Before(windowEnd) && windowStart.Before(s.End)
			assert.False(t, overlaps, "segment %v-%v overlaps the handover window on %v", s.Start, s.End, wed)
		}
	}
}

func TestWaakdienstSegments_Contiguity(t *testing.T) {
	segments := WaakdienstSegments(wednesday(t))

	for i := 1; i < len(segments); i++ {
		gap := segments[i].Start.Sub(segments[i-1].End)
		assert.True(t, gap == 0 || gap == 9*time.Hour,
			"unexpected gap %v between segments %d and %d", gap, i-1, i)
	}
}

func TestWaakdienstSegments_SevenDistinctWeekdays(t *testing.T) {
	segments := WaakdienstSegments(wednesday(t))
	days := CoverageDays(segments)

	// The week touches eight calendar dates (both Wednesdays) but seven
	// distinct weekdays
	assert.Len(t, days, 8)

	weekdays := make(map[time.Weekday]bool)
	for _, d := range days {
		weekdays[d.Weekday()] = true
	}
	assert.Len(t, weekdays, 7)
}

func TestWaakdienstSegments_WeekendsFullyCovered(t *testing.T) {
	segments := WaakdienstSegments(wednesday(t))

	var saturday, sunday float64
	for _, s := range segments {
		switch s.Date.Weekday() {
		case time.Saturday:
			saturday += s.Hours()
		case time.Sunday:
			sunday += s.Hours()
		}
	}
	assert.Equal(t, 24.0, saturday)
	assert.Equal(t, 24.0, sunday)
}

func TestBusinessHourSegments_FiveWeekdayBlocks(t *testing.T) {
	segments := BusinessHourSegments(monday(t))

	require.Len(t, segments, 5)
	weekdays := []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}
	for i, s := range segments {
		assert.Equal(t, 9.0, s.Hours())
		assert.Equal(t, weekdays[i], s.Date.Weekday())
		assert.Equal(t, BusinessStartHour, s.Start.Hour())
		assert.Equal(t, BusinessEndHour, s.End.Hour())
	}
}

func TestWeekStartOf_AnchorsBackwards(t *testing.T) {
	// Friday 2025-01-10 belongs to the waakdienst week of Wednesday the 8th
	friday := time.Date(2025, 1, 10, 13, 30, 0, 0, time.UTC)
	assert.Equal(t, wednesday(t), WeekStartOf(friday, WaakdienstAnchor))

	// and to the incident week of Monday the 6th
	assert.Equal(t, monday(t), WeekStartOf(friday, IncidentAnchor))

	// An anchor day is its own week start
	assert.Equal(t, wednesday(t), WeekStartOf(wednesday(t), WaakdienstAnchor))
}

package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	t, err := time.Parse(WeekKeyLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestAssignment_Validate(t *testing.T) {
	tests := []struct {
		name    string
		a       Assignment
		wantErr bool
	}{
		{
			name: "valid",
			a: Assignment{ResourceID: "r1", TaskID: "t1", ScheduleID: "s1",
				StartDate: date("2026-01-05"), EndDate: date("2026-01-30"), HoursPerWeek: 20},
		},
		{
			name: "single day range",
			a: Assignment{ResourceID: "r1", TaskID: "t1", ScheduleID: "s1",
				StartDate: date("2026-01-05"), EndDate: date("2026-01-05"), HoursPerWeek: 8},
		},
		{
			name: "end before start",
			a: Assignment{ResourceID: "r1", TaskID: "t1", ScheduleID: "s1",
				StartDate: date("2026-02-05"), EndDate: date("2026-01-05"), HoursPerWeek: 8},
			wantErr: true,
		},
		{
			name: "negative hours",
			a: Assignment{ResourceID: "r1", TaskID: "t1", ScheduleID: "s1",
				StartDate: date("2026-01-05"), EndDate: date("2026-01-30"), HoursPerWeek: -1},
			wantErr: true,
		},
		{
			name: "missing resource",
			a: Assignment{TaskID: "t1", ScheduleID: "s1",
				StartDate: date("2026-01-05"), EndDate: date("2026-01-30"), HoursPerWeek: 8},
			wantErr: true,
		},
		{
			name: "missing dates",
			a:       Assignment{ResourceID: "r1", TaskID: "t1", ScheduleID: "s1", HoursPerWeek: 8},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.a.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestResource_Validate(t *testing.T) {
	r := Resource{ID: "r1", Name: "Ada", CapacityHoursPerWeek: 40}
	require.NoError(t, r.Validate())

	r.CapacityHoursPerWeek = -5
	assert.Error(t, r.Validate())

	assert.Error(t, (&Resource{Name: "nobody"}).Validate())
}

func TestTask_HasDateRange(t *testing.T) {
	start := date("2026-01-05")
	end := date("2026-01-09")

	assert.False(t, (&Task{ID: "t"}).HasDateRange())
	assert.False(t, (&Task{ID: "t", StartDate: &start}).HasDateRange())
	assert.True(t, (&Task{ID: "t", StartDate: &start, EndDate: &end}).HasDateRange())
}

func TestEnumValidity(t *testing.T) {
	assert.True(t, SeveritySevere.IsValid())
	assert.False(t, Severity("meh").IsValid())
	assert.True(t, RiskCritical.IsValid())
	assert.False(t, RiskLevel("").IsValid())
	assert.True(t, SuggestionHire.IsValid())
	assert.False(t, SuggestionType("fire").IsValid())
}

func TestWeeklyUtilization_WeekKey(t *testing.T) {
	w := WeeklyUtilization{WeekStart: date("2026-03-02"), Utilization: 100}
	assert.Equal(t, "2026-03-02", w.WeekKey())
	assert.False(t, w.IsOverAllocated())

	w.Utilization = 100.5
	assert.True(t, w.IsOverAllocated())
}

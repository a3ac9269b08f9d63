package reminder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, time.September, 1, 10, 30, 0, 0, time.UTC)

func TestExtractCommand(t *testing.T) {
	tests := []struct {
		name            string
		text            string
		wantService     ServiceType
		wantDescription string
		wantVehicle     string
		wantDue         time.Time
	}{
		{
			name:            "remind me to",
			text:            "remind me to get an oil change on March 5",
			wantService:     ServiceOilChange,
			wantDescription: "get an oil change",
			wantDue:         time.Date(2027, time.March, 5, 0, 0, 0, 0, time.UTC),
		},
		{
			name:            "remind me with vehicle and ordinal date",
			text:            "remind me to change oil on my 2020 Honda Civic on December 15th",
			wantService:     ServiceOilChange,
			wantDescription: "change oil",
			wantVehicle:     "2020 Honda Civic",
			wantDue:         time.Date(2026, time.December, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:            "set a reminder",
			text:            "set a reminder for tire rotation by next week",
			wantService:     ServiceTireRotation,
			wantDescription: "tire rotation",
			wantDue:         time.Date(2026, time.September, 8, 0, 0, 0, 0, time.UTC),
		},
		{
			name:            "create with vehicle due clause",
			text:            "create a service reminder for brake pads on my truck due in 2 weeks",
			wantService:     ServiceBrakeService,
			wantDescription: "brake pads",
			wantVehicle:     "truck",
			wantDue:         time.Date(2026, time.September, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:            "due tomorrow",
			text:            "my registration is due tomorrow",
			wantService:     ServiceRegistration,
			wantDescription: "registration",
			wantDue:         time.Date(2026, time.September, 2, 0, 0, 0, 0, time.UTC),
		},
		{
			name:            "general service",
			text:            "remind me to wash the car on 2026-10-15",
			wantService:     ServiceGeneral,
			wantDescription: "wash the car",
			wantDue:         time.Date(2026, time.October, 15, 0, 0, 0, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := ExtractCommand(tt.text, testNow)
			require.NotNil(t, r)
			assert.Equal(t, tt.wantService, r.ServiceType)
			assert.Equal(t, tt.wantDescription, r.Description)
			assert.Equal(t, tt.wantVehicle, r.Vehicle)
			assert.Equal(t, tt.wantDue, r.DueDate)
			assert.Equal(t, StatusPending, r.Status)
		})
	}
}

func TestExtractCommandNoMatch(t *testing.T) {
	assert.Nil(t, ExtractCommand("text John saying hello", testNow))
	assert.Nil(t, ExtractCommand("what is the weather like", testNow))
}

func TestExtractCommandDefaultsUnreadableDate(t *testing.T) {
	r := ExtractCommand("remind me to do something on whenever works", testNow)
	require.NotNil(t, r)
	assert.Equal(t, "do something", r.Description)
	assert.Equal(t, time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC), r.DueDate)
}

func TestDetermineServiceType(t *testing.T) {
	assert.Equal(t, ServiceOilChange, DetermineServiceType("Oil Change for the truck"))
	assert.Equal(t, ServiceBrakeService, DetermineServiceType("check the brakes"))
	assert.Equal(t, ServiceInspection, DetermineServiceType("emissions inspection"))
	assert.Equal(t, ServiceGeneral, DetermineServiceType("replace wiper blades"))
}

func TestParseDueDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"today", time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)},
		{"tomorrow", time.Date(2026, time.September, 2, 0, 0, 0, 0, time.UTC)},
		{"next week", time.Date(2026, time.September, 8, 0, 0, 0, 0, time.UTC)},
		{"next month", time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC)},
		{"in 3 days", time.Date(2026, time.September, 4, 0, 0, 0, 0, time.UTC)},
		{"in 2 weeks", time.Date(2026, time.September, 15, 0, 0, 0, 0, time.UTC)},
		// months count as 30 days
		{"in 3 months", time.Date(2026, time.November, 30, 0, 0, 0, 0, time.UTC)},
		{"October 20, 2026", time.Date(2026, time.October, 20, 0, 0, 0, 0, time.UTC)},
		{"10/20/2026", time.Date(2026, time.October, 20, 0, 0, 0, 0, time.UTC)},
		{"12-25-2026", time.Date(2026, time.December, 25, 0, 0, 0, 0, time.UTC)},
		// ordinal day suffixes are stripped before parsing
		{"December 15th", time.Date(2026, time.December, 15, 0, 0, 0, 0, time.UTC)},
		{"March 3rd, 2027", time.Date(2027, time.March, 3, 0, 0, 0, 0, time.UTC)},
		// no year: next occurrence, so a date earlier in the year rolls over
		{"January 15", time.Date(2027, time.January, 15, 0, 0, 0, 0, time.UTC)},
		{"December 25", time.Date(2026, time.December, 25, 0, 0, 0, 0, time.UTC)},
		// unreadable dates land the default 30 days out
		{"whenever", time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseDueDate(tt.in, testNow))
		})
	}
}

func TestDaysUntilDue(t *testing.T) {
	r := &Reminder{DueDate: time.Date(2026, time.September, 4, 0, 0, 0, 0, time.UTC)}
	assert.Equal(t, 3, r.DaysUntilDue(testNow))

	overdue := &Reminder{DueDate: time.Date(2026, time.August, 30, 0, 0, 0, 0, time.UTC)}
	assert.Negative(t, overdue.DaysUntilDue(testNow))
}

// Package reminder manages scheduled service reminders: parsing them
// out of natural language, persisting them, and notifying when due.
package reminder

import "time"

// ServiceType categorizes the maintenance a reminder tracks.
type ServiceType string

const (
	ServiceOilChange    ServiceType = "oil_change"
	ServiceTireRotation ServiceType = "tire_rotation"
	ServiceBrakeService ServiceType = "brake_service"
	ServiceInspection   ServiceType = "inspection"
	ServiceRegistration ServiceType = "registration"
	ServiceGeneral      ServiceType = "general"
)

// Status tracks a reminder through its lifecycle.
type Status string

const (
	StatusPending   Status = "pending"
	StatusNotified  Status = "notified"
	StatusCompleted Status = "completed"
)

// Reminder is one stored service reminder. ContactMethod is a phone
// number or email address; the scheduler picks the channel from its
// classified kind at notification time.
type Reminder struct {
	ID            int64       `json:"id"`
	ServiceType   ServiceType `json:"serviceType"`
	Vehicle       string      `json:"vehicle,omitempty"`
	Description   string      `json:"description"`
	DueDate       time.Time   `json:"dueDate"`
	ContactMethod string      `json:"contactMethod"`
	Status        Status      `json:"status"`
	NotifiedAt    *time.Time  `json:"notifiedAt,omitempty"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

// DaysUntilDue is negative once the due date has passed.
func (r *Reminder) DaysUntilDue(now time.Time) int {
	return int(r.DueDate.Sub(now.Truncate(24*time.Hour)).Hours() / 24)
}

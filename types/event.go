package types

// EventStatus describes where an event sits relative to today.
type EventStatus string

const (
	EventUpcoming EventStatus = "Upcoming"
	EventToday    EventStatus = "Today"
	EventPast     EventStatus = "Past"
)

// Event is a todo item owned by the email that created it.
type Event struct {
	// ID is the opaque identifier assigned at creation.
	ID string `json:"todoId"`

	// Title must be unique across all events.
	Title string `json:"title"`

	// Description must be unique across all events.
	Description string `json:"description"`

	// Date is the calendar day in YYYY-MM-DD form.
	Date string `json:"date"`

	// Time is the 24-hour HH:MM time of day.
	Time string `json:"time"`

	// Status is fixed when the event is created and never recomputed.
	Status EventStatus `json:"status"`

	// Email is the owner's account email.
	Email string `json:"email"`
}

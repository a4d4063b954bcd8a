package events

import "github.com/google/uuid"

// EventSheetProcessed is published after every pipeline run, successful or
// not. Subscribers (run archive, email alerts) are best-effort listeners.
const EventSheetProcessed = "orders.sheet_processed"

// SheetProcessed carries the outcome of one pipeline run.
type SheetProcessed struct {
	BaseEvent
	RunID            uuid.UUID
	SheetName        string
	Success          bool
	Message          string
	NewCount         int
	AlreadySentCount int
	SkippedCount     int
	SentCount        int
	FailedCount      int
	// Payload is the webhook-shaped new-orders payload, nil when the run
	// produced nothing new.
	Payload []byte
}

// EventName returns the unique event identifier.
func (e SheetProcessed) EventName() string { return EventSheetProcessed }

package domain

import "time"

// CaptureEventKind labels a transition of the capture flow.
type CaptureEventKind string

const (
	CaptureEventPrompted        CaptureEventKind = "prompted"
	CaptureEventAmountRequested CaptureEventKind = "amount_requested"
	CaptureEventRecorded        CaptureEventKind = "recorded"
	CaptureEventRejected        CaptureEventKind = "rejected"
	CaptureEventInvalidAmount   CaptureEventKind = "invalid_amount"
	CaptureEventDuplicate       CaptureEventKind = "duplicate"
	CaptureEventFailed          CaptureEventKind = "failed"
)

// CaptureEvent is one journal entry for the capture flow.
// Stored in capture_events (ClickHouse) for auditing.
type CaptureEvent struct {
	Time     time.Time
	UserID   string // acting user
	PromptID string // outcome prompt message id, may be empty
	Kind     CaptureEventKind
	Outcome  Outcome // empty unless an outcome was chosen
	RR       float64
	Detail   string
}

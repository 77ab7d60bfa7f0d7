package models

// ProjectStatus is informational only; it does not gate time-entry creation.
type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "active"
	ProjectPaused    ProjectStatus = "paused"
	ProjectCompleted ProjectStatus = "completed"
)

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectActive, ProjectPaused, ProjectCompleted:
		return true
	}
	return false
}

// TimeEntryStatus follows draft -> confirmed -> billed. No backward moves.
type TimeEntryStatus string

const (
	EntryDraft     TimeEntryStatus = "draft"
	EntryConfirmed TimeEntryStatus = "confirmed"
	EntryBilled    TimeEntryStatus = "billed"
)

func (s TimeEntryStatus) Valid() bool {
	switch s {
	case EntryDraft, EntryConfirmed, EntryBilled:
		return true
	}
	return false
}

// InvoiceStatus follows draft -> sent -> {paid, overdue}. The stored
// "overdue" value is optional: a sent invoice past its due date counts as
// overdue at read time without the row being rewritten.
type InvoiceStatus string

const (
	InvoiceDraft   InvoiceStatus = "draft"
	InvoiceSent    InvoiceStatus = "sent"
	InvoicePaid    InvoiceStatus = "paid"
	InvoiceOverdue InvoiceStatus = "overdue"
)

func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceDraft, InvoiceSent, InvoicePaid, InvoiceOverdue:
		return true
	}
	return false
}

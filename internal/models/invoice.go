package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice is a bill issued to a client. The number is assigned from the
// row's own sequence position inside the creating transaction; callers
// never observe the placeholder.
type Invoice struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	ClientID uint    `gorm:"not null;index" json:"client_id"`
	Client   *Client `gorm:"foreignKey:ClientID" json:"-"`

	InvoiceNumber string `gorm:"size:20;uniqueIndex;not null" json:"invoice_number"`

	IssueDate time.Time `gorm:"type:date;not null;index" json:"issue_date"`
	DueDate   time.Time `gorm:"type:date;not null;index" json:"due_date"`

	Status    InvoiceStatus `gorm:"size:16;not null;default:'draft';index" json:"status"`
	Notes     string        `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt time.Time     `json:"created_at"`

	Items []InvoiceItem `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"items"`
}

// TotalAmount sums the locked line amounts.
func (i *Invoice) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for _, item := range i.Items {
		total = total.Add(item.Amount)
	}
	return total
}

// OverdueAsOf reports whether the invoice counts as overdue on the given
// day: either its stored status says so, or it was sent and the due date
// has passed. No background job rewrites the stored status; every reader
// applies this predicate.
func (i *Invoice) OverdueAsOf(today time.Time) bool {
	if i.Status == InvoiceOverdue {
		return true
	}
	return i.Status == InvoiceSent && i.DueDate.Before(DateOnly(today))
}

// DateOnly truncates a timestamp to its UTC calendar day. All date columns
// are stored this way so range comparisons stay exact.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// InvoiceItem is one locked line of an invoice. Hours, rate and amount are
// persisted values captured at invoice creation; they are never recomputed
// from the originating time entry, even if the entry or the project rate
// changes afterwards.
type InvoiceItem struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	InvoiceID uint `gorm:"not null;index" json:"invoice_id"`
	// Weak reference: deleting the entry clears it, the line survives.
	TimeEntryID *uint      `gorm:"index" json:"time_entry_id"`
	TimeEntry   *TimeEntry `gorm:"foreignKey:TimeEntryID;constraint:OnDelete:SET NULL" json:"-"`

	Hours  decimal.Decimal `gorm:"type:numeric(5,1);not null" json:"hours"`
	Rate   decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"rate"`
	Amount decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
}

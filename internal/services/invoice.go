package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/akazmin/lawbill/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// pendingNumber is only ever visible inside the creating transaction; by
// commit time the row carries its real number.
const pendingNumber = "__PENDING__"

// InvoiceService owns invoice creation (including number allocation and
// the billed transition of the source entries), draft updates and the
// explicit send/pay status advances.
type InvoiceService struct {
	DB *gorm.DB
}

func NewInvoiceService(db *gorm.DB) *InvoiceService { return &InvoiceService{DB: db} }

type CreateInvoiceInput struct {
	ClientID     uint      `json:"client_id"`
	TimeEntryIDs []uint    `json:"time_entry_ids"`
	IssueDate    time.Time `json:"issue_date"`
	DueDate      time.Time `json:"due_date"`
	Notes        string    `json:"notes"`
}

type InvoiceUpdate struct {
	IssueDate *time.Time `json:"issue_date"`
	DueDate   *time.Time `json:"due_date"`
	Notes     *string    `json:"notes"`
}

// Create turns a set of confirmed time entries into a draft invoice.
// Everything happens in one transaction: the invoice row, its number, the
// locked items and the billed transition of every entry are all-or-nothing.
func (s *InvoiceService) Create(in CreateInvoiceInput) (*models.Invoice, error) {
	if len(in.TimeEntryIDs) == 0 {
		return nil, invalidField("time_entry_ids", "required")
	}
	issue := models.DateOnly(in.IssueDate)
	due := models.DateOnly(in.DueDate)
	if due.Before(issue) {
		return nil, invalidField("due_date", "before_issue_date")
	}

	var invoice models.Invoice
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var client models.Client
		if err := tx.First(&client, in.ClientID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("client", in.ClientID)
			}
			return err
		}

		// Entries are loaded and validated inside the transaction so a
		// concurrent creation targeting the same entry observes the
		// first one's billed status and fails here.
		var entries []models.TimeEntry
		if err := tx.Preload("Project").Where("id IN ?", in.TimeEntryIDs).Find(&entries).Error; err != nil {
			return err
		}
		found := make(map[uint]bool, len(entries))
		for _, e := range entries {
			found[e.ID] = true
		}
		var missing []uint
		for _, id := range in.TimeEntryIDs {
			if !found[id] {
				missing = append(missing, id)
			}
		}
		if len(missing) > 0 {
			return notFound("time_entry", missing...)
		}
		var wrongClient, notConfirmed []uint
		for _, e := range entries {
			if e.Project == nil || e.Project.ClientID != in.ClientID {
				wrongClient = append(wrongClient, e.ID)
			} else if e.Status != models.EntryConfirmed {
				notConfirmed = append(notConfirmed, e.ID)
			}
		}
		if len(wrongClient) > 0 {
			return &InvalidStateError{Msg: "time_entries_not_owned_by_client", IDs: wrongClient}
		}
		if len(notConfirmed) > 0 {
			return &InvalidStateError{Msg: "time_entries_not_confirmed", IDs: notConfirmed}
		}

		// Rate resolution is evaluated once per project for the whole call.
		rates := make(map[uint]decimal.Decimal)
		for _, e := range entries {
			if _, ok := rates[e.ProjectID]; ok {
				continue
			}
			rate, err := ResolveRate(tx, e.Project)
			if err != nil {
				return err
			}
			rates[e.ProjectID] = rate
		}

		invoice = models.Invoice{
			ClientID:      in.ClientID,
			InvoiceNumber: pendingNumber,
			IssueDate:     issue,
			DueDate:       due,
			Status:        models.InvoiceDraft,
			Notes:         in.Notes,
		}
		if err := tx.Create(&invoice).Error; err != nil {
			return err
		}
		number, err := allocateNumber(tx, &invoice)
		if err != nil {
			return err
		}
		invoice.InvoiceNumber = number

		for i := range entries {
			e := &entries[i]
			rate := rates[e.ProjectID]
			item := models.InvoiceItem{
				InvoiceID:   invoice.ID,
				TimeEntryID: &e.ID,
				Hours:       e.DurationHours,
				Rate:        rate,
				Amount:      e.DurationHours.Mul(rate),
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
			invoice.Items = append(invoice.Items, item)
			e.Status = models.EntryBilled
			if err := tx.Save(e).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// allocateNumber derives the display number from the row's assigned id and
// writes it back within the same transaction. The duplicate check should
// be unreachable given the sequencing, it is a defensive guard only.
func allocateNumber(tx *gorm.DB, invoice *models.Invoice) (string, error) {
	number := fmt.Sprintf("INV-%04d", invoice.ID)
	var count int64
	if err := tx.Model(&models.Invoice{}).
		Where("invoice_number = ? AND id <> ?", number, invoice.ID).
		Count(&count).Error; err != nil {
		return "", err
	}
	if count > 0 {
		return "", &ConflictError{Msg: "duplicate_invoice_number: " + number}
	}
	if err := tx.Model(invoice).Update("invoice_number", number).Error; err != nil {
		return "", err
	}
	return number, nil
}

func (s *InvoiceService) get(id uint) (*models.Invoice, error) {
	var invoice models.Invoice
	if err := s.DB.Preload("Items").First(&invoice, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("invoice", id)
		}
		return nil, err
	}
	return &invoice, nil
}

// Update changes dates or notes while the invoice is still draft. Items
// are immutable once attached, so nothing else is editable.
func (s *InvoiceService) Update(id uint, in InvoiceUpdate) (*models.Invoice, error) {
	invoice, err := s.get(id)
	if err != nil {
		return nil, err
	}
	if invoice.Status != models.InvoiceDraft {
		return nil, &InvalidStateError{Msg: fmt.Sprintf("only_draft_updatable: status=%s", invoice.Status), IDs: []uint{id}}
	}
	if in.IssueDate != nil {
		invoice.IssueDate = models.DateOnly(*in.IssueDate)
	}
	if in.DueDate != nil {
		invoice.DueDate = models.DateOnly(*in.DueDate)
	}
	if invoice.DueDate.Before(invoice.IssueDate) {
		return nil, invalidField("due_date", "before_issue_date")
	}
	if in.Notes != nil {
		invoice.Notes = *in.Notes
	}
	if err := s.DB.Save(invoice).Error; err != nil {
		return nil, err
	}
	return invoice, nil
}

// Send advances draft -> sent. An operator action with no further gating.
func (s *InvoiceService) Send(id uint) (*models.Invoice, error) {
	invoice, err := s.get(id)
	if err != nil {
		return nil, err
	}
	if invoice.Status != models.InvoiceDraft {
		return nil, &InvalidStateError{Msg: fmt.Sprintf("only_draft_sendable: status=%s", invoice.Status), IDs: []uint{id}}
	}
	invoice.Status = models.InvoiceSent
	if err := s.DB.Model(invoice).Update("status", invoice.Status).Error; err != nil {
		return nil, err
	}
	return invoice, nil
}

// Pay advances sent -> paid. A stored overdue invoice is payable too.
func (s *InvoiceService) Pay(id uint) (*models.Invoice, error) {
	invoice, err := s.get(id)
	if err != nil {
		return nil, err
	}
	if invoice.Status != models.InvoiceSent && invoice.Status != models.InvoiceOverdue {
		return nil, &InvalidStateError{Msg: fmt.Sprintf("only_sent_payable: status=%s", invoice.Status), IDs: []uint{id}}
	}
	invoice.Status = models.InvoicePaid
	if err := s.DB.Model(invoice).Update("status", invoice.Status).Error; err != nil {
		return nil, err
	}
	return invoice, nil
}

// Delete removes a draft invoice, releasing its source entries back to
// confirmed so they can be re-invoiced. Sent and later invoices are part
// of the books and cannot be deleted.
func (s *InvoiceService) Delete(id uint) error {
	invoice, err := s.get(id)
	if err != nil {
		return err
	}
	if invoice.Status != models.InvoiceDraft {
		return &ConflictError{Msg: fmt.Sprintf("only_draft_deletable: status=%s", invoice.Status)}
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		for _, item := range invoice.Items {
			if item.TimeEntryID == nil {
				continue
			}
			if err := tx.Model(&models.TimeEntry{}).
				Where("id = ? AND status = ?", *item.TimeEntryID, models.EntryBilled).
				Update("status", models.EntryConfirmed).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("invoice_id = ?", invoice.ID).Delete(&models.InvoiceItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(invoice).Error
	})
}

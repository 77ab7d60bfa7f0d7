package services

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/akazmin/lawbill/internal/models"
)

func TestCreateInvoiceLocksAmounts(t *testing.T) {
	db := setupTestDB(t, t.Name())
	seedProfile(t, db, "5000")
	client := seedClient(t, db, "Acme")
	project := seedProject(t, db, client.ID, "Case", ratePtr("7000"))
	e1 := seedEntry(t, db, project.ID, date(2026, time.February, 2), "4.0", models.EntryConfirmed)
	e2 := seedEntry(t, db, project.ID, date(2026, time.February, 3), "3.5", models.EntryConfirmed)
	e3 := seedEntry(t, db, project.ID, date(2026, time.February, 4), "6.0", models.EntryConfirmed)
	svc := NewInvoiceService(db)

	invoice, err := svc.Create(CreateInvoiceInput{
		ClientID:     client.ID,
		TimeEntryIDs: []uint{e1.ID, e2.ID, e3.ID},
		IssueDate:    date(2026, time.February, 5),
		DueDate:      date(2026, time.February, 19),
	})
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}
	if len(invoice.Items) != 3 {
		t.Fatalf("expected 3 items got %d", len(invoice.Items))
	}
	wantAmounts := map[string]bool{"28000": true, "24500": true, "42000": true}
	for _, item := range invoice.Items {
		if !wantAmounts[item.Amount.String()] {
			t.Fatalf("unexpected amount %s", item.Amount)
		}
		if !item.Rate.Equal(dec("7000")) {
			t.Fatalf("expected locked rate 7000 got %s", item.Rate)
		}
	}

	// entries flipped to billed
	for _, id := range []uint{e1.ID, e2.ID, e3.ID} {
		var entry models.TimeEntry
		db.First(&entry, id)
		if entry.Status != models.EntryBilled {
			t.Fatalf("entry %d not billed: %s", id, entry.Status)
		}
	}

	// raising the project rate must not touch the locked amounts
	if err := db.Model(&models.Project{}).Where("id = ?", project.ID).Update("hourly_rate", dec("9000")).Error; err != nil {
		t.Fatalf("update rate: %v", err)
	}
	var items []models.InvoiceItem
	if err := db.Where("invoice_id = ?", invoice.ID).Find(&items).Error; err != nil {
		t.Fatalf("reload items: %v", err)
	}
	for _, item := range items {
		if !wantAmounts[item.Amount.String()] {
			t.Fatalf("amount drifted after rate change: %s", item.Amount)
		}
	}
}

func TestInvoiceNumberSequence(t *testing.T) {
	db := setupTestDB(t, t.Name())
	seedProfile(t, db, "5000")
	client := seedClient(t, db, "Acme")
	project := seedProject(t, db, client.ID, "Case", ratePtr("1000"))
	svc := NewInvoiceService(db)

	for n := 1; n <= 3; n++ {
		entry := seedEntry(t, db, project.ID, date(2026, time.February, n), "1.0", models.EntryConfirmed)
		invoice, err := svc.Create(CreateInvoiceInput{
			ClientID:     client.ID,
			TimeEntryIDs: []uint{entry.ID},
			IssueDate:    date(2026, time.February, n),
			DueDate:      date(2026, time.February, n+14),
		})
		if err != nil {
			t.Fatalf("create invoice %d: %v", n, err)
		}
		want := fmt.Sprintf("INV-%04d", n)
		if invoice.InvoiceNumber != want {
			t.Fatalf("expected %s got %s", want, invoice.InvoiceNumber)
		}
	}
	// numbers unique and no placeholder persisted
	var count int64
	db.Model(&models.Invoice{}).Where("invoice_number = ?", pendingNumber).Count(&count)
	if count != 0 {
		t.Fatalf("placeholder persisted %d times", count)
	}
}

func TestCreateInvoiceRejectsBilledEntryAtomically(t *testing.T) {
	db := setupTestDB(t, t.Name())
	seedProfile(t, db, "5000")
	client := seedClient(t, db, "Acme")
	project := seedProject(t, db, client.ID, "Case", ratePtr("1000"))
	confirmed := seedEntry(t, db, project.ID, date(2026, time.February, 2), "2.0", models.EntryConfirmed)
	billed := seedEntry(t, db, project.ID, date(2026, time.February, 3), "3.0", models.EntryBilled)
	svc := NewInvoiceService(db)

	_, err := svc.Create(CreateInvoiceInput{
		ClientID:     client.ID,
		TimeEntryIDs: []uint{confirmed.ID, billed.ID},
		IssueDate:    date(2026, time.February, 5),
		DueDate:      date(2026, time.February, 19),
	})
	var stateErr *InvalidStateError
	if !errors.As(err, &stateErr) {
		t.Fatalf("expected InvalidStateError got %v", err)
	}
	if len(stateErr.IDs) != 1 || stateErr.IDs[0] != billed.ID {
		t.Fatalf("expected offending id %d got %v", billed.ID, stateErr.IDs)
	}

	// nothing persisted, nothing transitioned
	var invoices, items int64
	db.Model(&models.Invoice{}).Count(&invoices)
	db.Model(&models.InvoiceItem{}).Count(&items)
	if invoices != 0 || items != 0 {
		t.Fatalf("partial invoice persisted: invoices=%d items=%d", invoices, items)
	}
	var check models.TimeEntry
	db.First(&check, confirmed.ID)
	if check.Status != models.EntryConfirmed {
		t.Fatalf("confirmed entry transitioned despite failure: %s", check.Status)
	}
}

func TestCreateInvoiceValidation(t *testing.T) {
	db := setupTestDB(t, t.Name())
	seedProfile(t, db, "5000")
	client := seedClient(t, db, "Acme")
	other := seedClient(t, db, "Globex")
	project := seedProject(t, db, other.ID, "Case", ratePtr("1000"))
	entry := seedEntry(t, db, project.ID, date(2026, time.February, 2), "2.0", models.EntryConfirmed)
	svc := NewInvoiceService(db)

	var valErr *ValidationError
	if _, err := svc.Create(CreateInvoiceInput{ClientID: client.ID, IssueDate: date(2026, 2, 5), DueDate: date(2026, 2, 19)}); !errors.As(err, &valErr) {
		t.Fatalf("expected ValidationError for empty id list got %v", err)
	}
	if _, err := svc.Create(CreateInvoiceInput{ClientID: client.ID, TimeEntryIDs: []uint{entry.ID}, IssueDate: date(2026, 2, 19), DueDate: date(2026, 2, 5)}); !errors.As(err, &valErr) {
		t.Fatalf("expected ValidationError for due before issue got %v", err)
	}
	var nfErr *NotFoundError
	if _, err := svc.Create(CreateInvoiceInput{ClientID: 999, TimeEntryIDs: []uint{entry.ID}, IssueDate: date(2026, 2, 5), DueDate: date(2026, 2, 19)}); !errors.As(err, &nfErr) {
		t.Fatalf("expected NotFoundError for missing client got %v", err)
	}
	if _, err := svc.Create(CreateInvoiceInput{ClientID: client.ID, TimeEntryIDs: []uint{entry.ID, 555}, IssueDate: date(2026, 2, 5), DueDate: date(2026, 2, 19)}); !errors.As(err, &nfErr) {
		t.Fatalf("expected NotFoundError for missing entries got %v", err)
	}
	// entry belongs to another client
	var stateErr *InvalidStateError
	if _, err := svc.Create(CreateInvoiceInput{ClientID: client.ID, TimeEntryIDs: []uint{entry.ID}, IssueDate: date(2026, 2, 5), DueDate: date(2026, 2, 19)}); !errors.As(err, &stateErr) {
		t.Fatalf("expected InvalidStateError for foreign entry got %v", err)
	}
}

func TestCreateInvoiceSameDayDueDate(t *testing.T) {
	db := setupTestDB(t, t.Name())
	seedProfile(t, db, "5000")
	client := seedClient(t, db, "Acme")
	project := seedProject(t, db, client.ID, "Case", ratePtr("1000"))
	entry := seedEntry(t, db, project.ID, date(2026, time.February, 2), "2.0", models.EntryConfirmed)
	svc := NewInvoiceService(db)

	// due_date == issue_date is allowed
	if _, err := svc.Create(CreateInvoiceInput{ClientID: client.ID, TimeEntryIDs: []uint{entry.ID}, IssueDate: date(2026, 2, 5), DueDate: date(2026, 2, 5)}); err != nil {
		t.Fatalf("same-day due date rejected: %v", err)
	}
}

func TestCreateInvoiceFallbackRate(t *testing.T) {
	db := setupTestDB(t, t.Name())
	seedProfile(t, db, "5000")
	client := seedClient(t, db, "Acme")
	project := seedProject(t, db, client.ID, "Case", nil)
	entry := seedEntry(t, db, project.ID, date(2026, time.February, 2), "2.0", models.EntryConfirmed)
	svc := NewInvoiceService(db)

	invoice, err := svc.Create(CreateInvoiceInput{ClientID: client.ID, TimeEntryIDs: []uint{entry.ID}, IssueDate: date(2026, 2, 5), DueDate: date(2026, 2, 19)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !invoice.Items[0].Rate.Equal(dec("5000")) {
		t.Fatalf("expected profile rate 5000 got %s", invoice.Items[0].Rate)
	}
	if !invoice.Items[0].Amount.Equal(dec("10000")) {
		t.Fatalf("expected amount 10000 got %s", invoice.Items[0].Amount)
	}
}

func TestCreateInvoiceUnconfiguredBilling(t *testing.T) {
	db := setupTestDB(t, t.Name())
	client := seedClient(t, db, "Acme")
	project := seedProject(t, db, client.ID, "Case", nil)
	entry := seedEntry(t, db, project.ID, date(2026, time.February, 2), "2.0", models.EntryConfirmed)
	svc := NewInvoiceService(db)

	_, err := svc.Create(CreateInvoiceInput{ClientID: client.ID, TimeEntryIDs: []uint{entry.ID}, IssueDate: date(2026, 2, 5), DueDate: date(2026, 2, 19)})
	var confErr *ConfigurationError
	if !errors.As(err, &confErr) {
		t.Fatalf("expected ConfigurationError got %v", err)
	}
	var count int64
	db.Model(&models.Invoice{}).Count(&count)
	if count != 0 {
		t.Fatalf("invoice persisted despite rollback: %d", count)
	}
}

func TestUpdateInvoiceDraftOnly(t *testing.T) {
	db := setupTestDB(t, t.Name())
	seedProfile(t, db, "5000")
	client := seedClient(t, db, "Acme")
	project := seedProject(t, db, client.ID, "Case", ratePtr("1000"))
	entry := seedEntry(t, db, project.ID, date(2026, time.February, 2), "2.0", models.EntryConfirmed)
	svc := NewInvoiceService(db)

	invoice, err := svc.Create(CreateInvoiceInput{ClientID: client.ID, TimeEntryIDs: []uint{entry.ID}, IssueDate: date(2026, 2, 5), DueDate: date(2026, 2, 19)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	notes := "updated terms"
	if _, err := svc.Update(invoice.ID, InvoiceUpdate{Notes: &notes}); err != nil {
		t.Fatalf("update draft: %v", err)
	}
	badDue := date(2026, 2, 1)
	var valErr *ValidationError
	if _, err := svc.Update(invoice.ID, InvoiceUpdate{DueDate: &badDue}); !errors.As(err, &valErr) {
		t.Fatalf("expected ValidationError for date regression got %v", err)
	}

	if _, err := svc.Send(invoice.ID); err != nil {
		t.Fatalf("send: %v", err)
	}
	var stateErr *InvalidStateError
	if _, err := svc.Update(invoice.ID, InvoiceUpdate{Notes: &notes}); !errors.As(err, &stateErr) {
		t.Fatalf("expected InvalidStateError after send got %v", err)
	}
}

func TestInvoiceStatusAdvance(t *testing.T) {
	db := setupTestDB(t, t.Name())
	seedProfile(t, db, "5000")
	client := seedClient(t, db, "Acme")
	project := seedProject(t, db, client.ID, "Case", ratePtr("1000"))
	entry := seedEntry(t, db, project.ID, date(2026, time.February, 2), "2.0", models.EntryConfirmed)
	svc := NewInvoiceService(db)

	invoice, err := svc.Create(CreateInvoiceInput{ClientID: client.ID, TimeEntryIDs: []uint{entry.ID}, IssueDate: date(2026, 2, 5), DueDate: date(2026, 2, 19)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	var stateErr *InvalidStateError
	if _, err := svc.Pay(invoice.ID); !errors.As(err, &stateErr) {
		t.Fatalf("expected InvalidStateError paying a draft got %v", err)
	}
	if _, err := svc.Send(invoice.ID); err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, err := svc.Send(invoice.ID); !errors.As(err, &stateErr) {
		t.Fatalf("expected InvalidStateError sending twice got %v", err)
	}
	if _, err := svc.Pay(invoice.ID); err != nil {
		t.Fatalf("pay: %v", err)
	}
	if _, err := svc.Pay(invoice.ID); !errors.As(err, &stateErr) {
		t.Fatalf("expected InvalidStateError paying twice got %v", err)
	}
}

func TestPayStoredOverdueInvoice(t *testing.T) {
	db := setupTestDB(t, t.Name())
	seedProfile(t, db, "5000")
	client := seedClient(t, db, "Acme")
	invoice := models.Invoice{ClientID: client.ID, InvoiceNumber: "INV-0042", IssueDate: date(2026, 1, 1), DueDate: date(2026, 1, 15), Status: models.InvoiceOverdue}
	if err := db.Create(&invoice).Error; err != nil {
		t.Fatalf("seed invoice: %v", err)
	}
	svc := NewInvoiceService(db)
	paid, err := svc.Pay(invoice.ID)
	if err != nil {
		t.Fatalf("pay overdue: %v", err)
	}
	if paid.Status != models.InvoicePaid {
		t.Fatalf("expected paid got %s", paid.Status)
	}
}

func TestDeleteDraftInvoiceReleasesEntries(t *testing.T) {
	db := setupTestDB(t, t.Name())
	seedProfile(t, db, "5000")
	client := seedClient(t, db, "Acme")
	project := seedProject(t, db, client.ID, "Case", ratePtr("1000"))
	entry := seedEntry(t, db, project.ID, date(2026, time.February, 2), "2.0", models.EntryConfirmed)
	svc := NewInvoiceService(db)

	invoice, err := svc.Create(CreateInvoiceInput{ClientID: client.ID, TimeEntryIDs: []uint{entry.ID}, IssueDate: date(2026, 2, 5), DueDate: date(2026, 2, 19)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Delete(invoice.ID); err != nil {
		t.Fatalf("delete draft: %v", err)
	}
	var check models.TimeEntry
	db.First(&check, entry.ID)
	if check.Status != models.EntryConfirmed {
		t.Fatalf("entry not released, status=%s", check.Status)
	}
	var items int64
	db.Model(&models.InvoiceItem{}).Count(&items)
	if items != 0 {
		t.Fatalf("orphaned items remain: %d", items)
	}
}

func TestDeleteSentInvoiceRefused(t *testing.T) {
	db := setupTestDB(t, t.Name())
	seedProfile(t, db, "5000")
	client := seedClient(t, db, "Acme")
	project := seedProject(t, db, client.ID, "Case", ratePtr("1000"))
	entry := seedEntry(t, db, project.ID, date(2026, time.February, 2), "2.0", models.EntryConfirmed)
	svc := NewInvoiceService(db)

	invoice, err := svc.Create(CreateInvoiceInput{ClientID: client.ID, TimeEntryIDs: []uint{entry.ID}, IssueDate: date(2026, 2, 5), DueDate: date(2026, 2, 19)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Send(invoice.ID); err != nil {
		t.Fatalf("send: %v", err)
	}
	var conflict *ConflictError
	if err := svc.Delete(invoice.ID); !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError got %v", err)
	}
}

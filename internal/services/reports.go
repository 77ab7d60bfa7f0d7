package services

import (
	"sort"
	"time"

	"github.com/akazmin/lawbill/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReportService is the read-only aggregation engine behind the dashboard
// and period reports. It never mutates state and never fails on dangling
// references: entries whose project or client is gone are excluded.
//
// All accumulation is exact decimal arithmetic; rounding (2 decimals for
// money, 1 for hours) happens only when filling the output structs.
type ReportService struct {
	DB *gorm.DB
}

func NewReportService(db *gorm.DB) *ReportService { return &ReportService{DB: db} }

type RecentTimeEntry struct {
	ID            uint      `json:"id"`
	Date          time.Time `json:"date"`
	ProjectID     uint      `json:"project_id"`
	ProjectName   string    `json:"project_name"`
	ClientID      uint      `json:"client_id"`
	ClientName    string    `json:"client_name"`
	DurationHours float64   `json:"duration_hours"`
	Description   string    `json:"description,omitempty"`
	Status        string    `json:"status"`
}

type RecentInvoice struct {
	ID            uint      `json:"id"`
	InvoiceNumber string    `json:"invoice_number"`
	ClientID      uint      `json:"client_id"`
	ClientName    string    `json:"client_name"`
	IssueDate     time.Time `json:"issue_date"`
	DueDate       time.Time `json:"due_date"`
	Status        string    `json:"status"`
	TotalAmount   float64   `json:"total_amount"`
}

type Dashboard struct {
	HoursThisWeek        float64           `json:"hours_this_week"`
	HoursThisMonth       float64           `json:"hours_this_month"`
	UnbilledAmount       float64           `json:"unbilled_amount"`
	UnpaidAmount         float64           `json:"unpaid_amount"`
	OverdueInvoicesCount int               `json:"overdue_invoices_count"`
	RecentTimeEntries    []RecentTimeEntry `json:"recent_time_entries"`
	RecentInvoices       []RecentInvoice   `json:"recent_invoices"`
}

// Dashboard computes the snapshot for the given day. The week starts on
// Monday; both ranges end at today inclusive.
func (s *ReportService) Dashboard(today time.Time) (*Dashboard, error) {
	day := models.DateOnly(today)
	weekStart := day.AddDate(0, 0, -((int(day.Weekday()) + 6) % 7))
	monthStart := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)

	hoursWeek, err := s.sumHours(weekStart, day)
	if err != nil {
		return nil, err
	}
	hoursMonth, err := s.sumHours(monthStart, day)
	if err != nil {
		return nil, err
	}

	// Unbilled money is an estimate priced at the live rate: confirmed
	// entries have no invoice item yet, so there is nothing locked.
	defaultRate, err := defaultRateOrZero(s.DB)
	if err != nil {
		return nil, err
	}
	var confirmed []models.TimeEntry
	if err := s.DB.Preload("Project").Where("status = ?", models.EntryConfirmed).Find(&confirmed).Error; err != nil {
		return nil, err
	}
	unbilled := decimal.Zero
	for _, e := range confirmed {
		rate := defaultRate
		if e.Project != nil && e.Project.HourlyRate != nil {
			rate = *e.Project.HourlyRate
		}
		unbilled = unbilled.Add(e.DurationHours.Mul(rate))
	}

	var outstanding []models.Invoice
	if err := s.DB.Preload("Items").
		Where("status IN ?", []models.InvoiceStatus{models.InvoiceSent, models.InvoiceOverdue}).
		Find(&outstanding).Error; err != nil {
		return nil, err
	}
	unpaid := decimal.Zero
	overdueCount := 0
	for i := range outstanding {
		unpaid = unpaid.Add(outstanding[i].TotalAmount())
		if outstanding[i].OverdueAsOf(day) {
			overdueCount++
		}
	}

	recentEntries, err := s.recentEntries(5)
	if err != nil {
		return nil, err
	}
	recentInvoices, err := s.recentInvoices(5)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		HoursThisWeek:        hoursWeek.Round(1).InexactFloat64(),
		HoursThisMonth:       hoursMonth.Round(1).InexactFloat64(),
		UnbilledAmount:       unbilled.Round(2).InexactFloat64(),
		UnpaidAmount:         unpaid.Round(2).InexactFloat64(),
		OverdueInvoicesCount: overdueCount,
		RecentTimeEntries:    recentEntries,
		RecentInvoices:       recentInvoices,
	}, nil
}

func (s *ReportService) sumHours(from, to time.Time) (decimal.Decimal, error) {
	var entries []models.TimeEntry
	if err := s.DB.Select("duration_hours").
		Where("date >= ? AND date <= ?", from, to).
		Find(&entries).Error; err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.DurationHours)
	}
	return total, nil
}

func (s *ReportService) recentEntries(limit int) ([]RecentTimeEntry, error) {
	var entries []models.TimeEntry
	if err := s.DB.Preload("Project.Client").
		Order("date DESC, id DESC").Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	rows := make([]RecentTimeEntry, 0, len(entries))
	for _, e := range entries {
		row := RecentTimeEntry{
			ID:            e.ID,
			Date:          e.Date,
			ProjectID:     e.ProjectID,
			DurationHours: e.DurationHours.Round(1).InexactFloat64(),
			Description:   e.Description,
			Status:        string(e.Status),
		}
		if e.Project != nil {
			row.ProjectName = e.Project.Name
			row.ClientID = e.Project.ClientID
			if e.Project.Client != nil {
				row.ClientName = e.Project.Client.Name
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *ReportService) recentInvoices(limit int) ([]RecentInvoice, error) {
	var invoices []models.Invoice
	if err := s.DB.Preload("Items").Preload("Client").
		Order("issue_date DESC, id DESC").Limit(limit).
		Find(&invoices).Error; err != nil {
		return nil, err
	}
	rows := make([]RecentInvoice, 0, len(invoices))
	for i := range invoices {
		inv := &invoices[i]
		row := RecentInvoice{
			ID:            inv.ID,
			InvoiceNumber: inv.InvoiceNumber,
			ClientID:      inv.ClientID,
			IssueDate:     inv.IssueDate,
			DueDate:       inv.DueDate,
			Status:        string(inv.Status),
			TotalAmount:   inv.TotalAmount().Round(2).InexactFloat64(),
		}
		if inv.Client != nil {
			row.ClientName = inv.Client.Name
		}
		rows = append(rows, row)
	}
	return rows, nil
}

type ProjectBreakdown struct {
	ProjectID    uint    `json:"project_id"`
	ProjectName  string  `json:"project_name"`
	EntriesCount int     `json:"entries_count"`
	Hours        float64 `json:"hours"`
	Amount       float64 `json:"amount"`
}

type ClientBreakdown struct {
	ClientID   uint               `json:"client_id"`
	ClientName string             `json:"client_name"`
	Hours      float64            `json:"hours"`
	Amount     float64            `json:"amount"`
	Projects   []ProjectBreakdown `json:"projects"`
}

type InvoiceSummary struct {
	CountTotal    int     `json:"count_total"`
	CountPaid     int     `json:"count_paid"`
	CountUnpaid   int     `json:"count_unpaid"`
	CountOverdue  int     `json:"count_overdue"`
	TotalInvoiced float64 `json:"total_invoiced"`
	TotalPaid     float64 `json:"total_paid"`
	TotalUnpaid   float64 `json:"total_unpaid"`
}

type Report struct {
	DateFrom       time.Time         `json:"date_from"`
	DateTo         time.Time         `json:"date_to"`
	ClientID       *uint             `json:"client_id"`
	TotalHours     float64           `json:"total_hours"`
	TotalAmount    float64           `json:"total_amount"`
	Breakdown      []ClientBreakdown `json:"breakdown"`
	InvoiceSummary InvoiceSummary    `json:"invoice_summary"`
}

type clientAcc struct {
	client   *models.Client
	hours    decimal.Decimal
	amount   decimal.Decimal
	projects map[uint]*projectAcc
}

type projectAcc struct {
	project *models.Project
	entries int
	hours   decimal.Decimal
	amount  decimal.Decimal
}

// PeriodReport rolls up time entries with date in [from, to] into a
// client -> project breakdown, plus an invoice summary over invoices
// issued in the same range. today feeds the overdue predicate.
func (s *ReportService) PeriodReport(from, to time.Time, clientID *uint, today time.Time) (*Report, error) {
	from = models.DateOnly(from)
	to = models.DateOnly(to)

	defaultRate, err := defaultRateOrZero(s.DB)
	if err != nil {
		return nil, err
	}

	q := s.DB.Preload("Project.Client").Where("date >= ? AND date <= ?", from, to)
	if clientID != nil {
		q = q.Joins("JOIN projects ON projects.id = time_entries.project_id").
			Where("projects.client_id = ?", *clientID)
	}
	var entries []models.TimeEntry
	if err := q.Find(&entries).Error; err != nil {
		return nil, err
	}

	clients := make(map[uint]*clientAcc)
	for _, e := range entries {
		if e.Project == nil || e.Project.Client == nil {
			continue
		}
		project := e.Project
		rate := defaultRate
		if project.HourlyRate != nil {
			rate = *project.HourlyRate
		}
		amount := e.DurationHours.Mul(rate)

		ca, ok := clients[project.ClientID]
		if !ok {
			ca = &clientAcc{client: project.Client, projects: make(map[uint]*projectAcc)}
			clients[project.ClientID] = ca
		}
		pa, ok := ca.projects[project.ID]
		if !ok {
			pa = &projectAcc{project: project}
			ca.projects[project.ID] = pa
		}
		ca.hours = ca.hours.Add(e.DurationHours)
		ca.amount = ca.amount.Add(amount)
		pa.hours = pa.hours.Add(e.DurationHours)
		pa.amount = pa.amount.Add(amount)
		pa.entries++
	}

	totalHours, totalAmount := decimal.Zero, decimal.Zero
	breakdown := make([]ClientBreakdown, 0, len(clients))
	for _, ca := range clients {
		projects := make([]*projectAcc, 0, len(ca.projects))
		for _, pa := range ca.projects {
			projects = append(projects, pa)
		}
		sort.Slice(projects, func(i, j int) bool {
			if c := projects[i].hours.Cmp(projects[j].hours); c != 0 {
				return c > 0
			}
			return projects[i].project.ID < projects[j].project.ID
		})
		rows := make([]ProjectBreakdown, 0, len(projects))
		for _, pa := range projects {
			rows = append(rows, ProjectBreakdown{
				ProjectID:    pa.project.ID,
				ProjectName:  pa.project.Name,
				EntriesCount: pa.entries,
				Hours:        pa.hours.Round(1).InexactFloat64(),
				Amount:       pa.amount.Round(2).InexactFloat64(),
			})
		}
		breakdown = append(breakdown, ClientBreakdown{
			ClientID:   ca.client.ID,
			ClientName: ca.client.Name,
			Hours:      ca.hours.Round(1).InexactFloat64(),
			Amount:     ca.amount.Round(2).InexactFloat64(),
			Projects:   rows,
		})
		totalHours = totalHours.Add(ca.hours)
		totalAmount = totalAmount.Add(ca.amount)
	}
	// Descending total hours; ordering on the exact decimals, not the
	// rounded outputs.
	hoursByClient := make(map[uint]decimal.Decimal, len(clients))
	for id, ca := range clients {
		hoursByClient[id] = ca.hours
	}
	sort.Slice(breakdown, func(i, j int) bool {
		if c := hoursByClient[breakdown[i].ClientID].Cmp(hoursByClient[breakdown[j].ClientID]); c != 0 {
			return c > 0
		}
		return breakdown[i].ClientID < breakdown[j].ClientID
	})

	summary, err := s.invoiceSummary(from, to, clientID, models.DateOnly(today))
	if err != nil {
		return nil, err
	}

	return &Report{
		DateFrom:       from,
		DateTo:         to,
		ClientID:       clientID,
		TotalHours:     totalHours.Round(1).InexactFloat64(),
		TotalAmount:    totalAmount.Round(2).InexactFloat64(),
		Breakdown:      breakdown,
		InvoiceSummary: summary,
	}, nil
}

func (s *ReportService) invoiceSummary(from, to time.Time, clientID *uint, today time.Time) (InvoiceSummary, error) {
	q := s.DB.Preload("Items").Where("issue_date >= ? AND issue_date <= ?", from, to)
	if clientID != nil {
		q = q.Where("client_id = ?", *clientID)
	}
	var invoices []models.Invoice
	if err := q.Find(&invoices).Error; err != nil {
		return InvoiceSummary{}, err
	}

	summary := InvoiceSummary{CountTotal: len(invoices)}
	invoiced, paid, unpaid := decimal.Zero, decimal.Zero, decimal.Zero
	for i := range invoices {
		inv := &invoices[i]
		total := inv.TotalAmount()
		invoiced = invoiced.Add(total)
		switch inv.Status {
		case models.InvoicePaid:
			summary.CountPaid++
			paid = paid.Add(total)
		case models.InvoiceSent, models.InvoiceOverdue:
			// Unpaid money excludes drafts; the unpaid count below
			// includes them.
			summary.CountUnpaid++
			unpaid = unpaid.Add(total)
		case models.InvoiceDraft:
			summary.CountUnpaid++
		}
		if inv.OverdueAsOf(today) {
			summary.CountOverdue++
		}
	}
	summary.TotalInvoiced = invoiced.Round(2).InexactFloat64()
	summary.TotalPaid = paid.Round(2).InexactFloat64()
	summary.TotalUnpaid = unpaid.Round(2).InexactFloat64()
	return summary, nil
}

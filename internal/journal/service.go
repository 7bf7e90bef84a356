package journal

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/massikone/massikone/internal/model"
	"github.com/massikone/massikone/internal/store"
)

// AccountSource provides a period's postable accounts and bounds.
type AccountSource interface {
	AccountMap(ctx context.Context, periodID int) (map[int]model.Account, error)
	GetPeriod(ctx context.Context, id int) (model.Period, error)
}

// Service stores and reads the ledger lines of bills.
type Service struct {
	store    *store.Store
	accounts AccountSource
	periodID int
	log      *zap.Logger
}

// NewService creates a journal Service validating entries against the
// accounts of periodID.
func NewService(st *store.Store, accounts AccountSource, periodID int, log *zap.Logger) *Service {
	return &Service{store: st, accounts: accounts, periodID: periodID, log: log.Named("journal")}
}

// Journal is a period's bills with their entries and grand totals.
type Journal struct {
	Entries     []model.JournalEntry
	DebitCents  int64
	CreditCents int64
}

// LedgerAccount is one account's section of the general ledger.
type LedgerAccount struct {
	AccountID   int
	Lines       []model.LedgerLine
	DebitCents  int64
	CreditCents int64
}

// Ledger is a period's entries regrouped by account.
type Ledger struct {
	Accounts    []LedgerAccount
	DebitCents  int64
	CreditCents int64
}

// Accounts loads the postable accounts entries are validated against. It
// must be called outside any unit of work.
func (s *Service) Accounts(ctx context.Context) (AccountSet, error) {
	accounts, err := s.accounts.AccountMap(ctx, s.periodID)
	if err != nil {
		return nil, fmt.Errorf("loading accounts: %w", err)
	}
	return AccountSet(accounts), nil
}

// ReplaceEntries atomically replaces all entries of a bill. Entries are
// stored with row numbers 0..n-1 in the given order.
func (s *Service) ReplaceEntries(ctx context.Context, billID int, entries []model.BillEntry) error {
	accounts, err := s.Accounts(ctx)
	if err != nil {
		return err
	}
	return s.store.Transaction(ctx, func(tx *gorm.DB) error {
		return s.Replace(tx, billID, entries, accounts)
	})
}

// Replace is ReplaceEntries inside the caller's unit of work.
func (s *Service) Replace(tx *gorm.DB, billID int, entries []model.BillEntry, accounts AccountChecker) error {
	if err := billExists(tx, billID); err != nil {
		return err
	}
	if err := ValidateEntries(billID, entries, accounts); err != nil {
		return err
	}

	if err := tx.Where("bill_id = ?", billID).Delete(&store.BillEntryRecord{}).Error; err != nil {
		return fmt.Errorf("deleting entries of bill %d: %w", billID, err)
	}
	if len(entries) == 0 {
		return nil
	}

	records := make([]store.BillEntryRecord, len(entries))
	for i, e := range entries {
		records[i] = store.BillEntryRecord{
			BillID:        billID,
			RowNumber:     i,
			AccountID:     e.AccountID,
			Debit:         e.Debit,
			UnitCount:     e.UnitCount,
			UnitCostCents: e.UnitCostCents,
			Description:   e.Description,
		}
	}
	if err := tx.Create(&records).Error; err != nil {
		return fmt.Errorf("inserting entries of bill %d: %w", billID, err)
	}
	s.log.Debug("replaced bill entries", zap.Int("bill_id", billID), zap.Int("entries", len(records)))
	return nil
}

// EntriesForBill returns a bill's entries in row order.
func (s *Service) EntriesForBill(ctx context.Context, billID int) ([]model.BillEntry, error) {
	var entries []model.BillEntry
	err := s.store.Transaction(ctx, func(tx *gorm.DB) error {
		if err := billExists(tx, billID); err != nil {
			return err
		}
		var err error
		entries, err = EntriesForBills(tx, []int{billID})
		return err
	})
	return entries, err
}

// EntriesForBills reads the entries of the given bills ordered by bill and
// row number.
func EntriesForBills(db *gorm.DB, billIDs []int) ([]model.BillEntry, error) {
	if len(billIDs) == 0 {
		return nil, nil
	}
	var records []store.BillEntryRecord
	if err := db.Where("bill_id IN ?", billIDs).Order("bill_id, row_number").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("reading bill entries: %w", err)
	}
	entries := make([]model.BillEntry, len(records))
	for i, r := range records {
		entries[i] = toEntry(r)
	}
	return entries, nil
}

// PeriodEntries returns every entry of the bills in a period.
func (s *Service) PeriodEntries(ctx context.Context, periodID int) ([]model.BillEntry, error) {
	period, err := s.accounts.GetPeriod(ctx, periodID)
	if err != nil {
		return nil, err
	}
	var records []store.BillEntryRecord
	err = s.store.DB(ctx).Model(&store.BillEntryRecord{}).
		Select("bill_entry.*").
		Joins("JOIN bill ON bill.bill_id = bill_entry.bill_id").
		Scopes(store.PaidWithin(period)).
		Order("bill_entry.bill_id, bill_entry.row_number").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("reading period %d entries: %w", periodID, err)
	}
	entries := make([]model.BillEntry, len(records))
	for i, r := range records {
		entries[i] = toEntry(r)
	}
	return entries, nil
}

// EntriesForJournal returns the period's bills that have entries, in bill
// order, with journal totals.
func (s *Service) EntriesForJournal(ctx context.Context, periodID int) (Journal, error) {
	period, err := s.accounts.GetPeriod(ctx, periodID)
	if err != nil {
		return Journal{}, err
	}

	var journal Journal
	err = s.store.Transaction(ctx, func(tx *gorm.DB) error {
		var bills []store.BillRecord
		if err := tx.Scopes(store.PaidWithin(period)).Order("bill_id").Find(&bills).Error; err != nil {
			return fmt.Errorf("reading period %d bills: %w", periodID, err)
		}
		ids := make([]int, len(bills))
		for i, b := range bills {
			ids[i] = b.BillID
		}
		entries, err := EntriesForBills(tx, ids)
		if err != nil {
			return err
		}

		byBill := make(map[int][]model.BillEntry)
		for _, e := range entries {
			byBill[e.BillID] = append(byBill[e.BillID], e)
		}
		for _, b := range bills {
			es := byBill[b.BillID]
			if len(es) == 0 {
				continue
			}
			debit, credit := model.EntryTotals(es)
			journal.Entries = append(journal.Entries, model.JournalEntry{
				BillID:      b.BillID,
				Date:        store.Deref(b.PaidDate),
				Description: b.Description,
				Entries:     es,
				DebitCents:  debit,
				CreditCents: credit,
			})
			journal.DebitCents += debit
			journal.CreditCents += credit
		}
		return nil
	})
	return journal, err
}

// GeneralLedger regroups the period's journal by account. Accounts are in
// id order; within an account lines are ordered by date then bill and carry
// the running balance (debits add, credits subtract).
func (s *Service) GeneralLedger(ctx context.Context, periodID int) (Ledger, error) {
	journal, err := s.EntriesForJournal(ctx, periodID)
	if err != nil {
		return Ledger{}, err
	}
	return BuildLedger(journal), nil
}

// BuildLedger regroups a journal by account.
func BuildLedger(journal Journal) Ledger {
	byAccount := make(map[int][]model.LedgerLine)
	for _, je := range journal.Entries {
		for _, e := range je.Entries {
			line := model.LedgerLine{
				AccountID:   e.AccountID,
				BillID:      je.BillID,
				Date:        je.Date,
				Description: je.Description,
			}
			if e.Debit {
				line.DebitCents = e.Cents()
			} else {
				line.CreditCents = e.Cents()
			}
			byAccount[e.AccountID] = append(byAccount[e.AccountID], line)
		}
	}

	ids := make([]int, 0, len(byAccount))
	for id := range byAccount {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	ledger := Ledger{Accounts: make([]LedgerAccount, 0, len(ids))}
	for _, id := range ids {
		lines := byAccount[id]
		sort.SliceStable(lines, func(i, j int) bool {
			if lines[i].Date != lines[j].Date {
				return lines[i].Date < lines[j].Date
			}
			return lines[i].BillID < lines[j].BillID
		})
		acct := LedgerAccount{AccountID: id, Lines: lines}
		var balance int64
		for i := range lines {
			balance += lines[i].DebitCents - lines[i].CreditCents
			lines[i].BalanceCents = balance
			acct.DebitCents += lines[i].DebitCents
			acct.CreditCents += lines[i].CreditCents
		}
		ledger.Accounts = append(ledger.Accounts, acct)
		ledger.DebitCents += acct.DebitCents
		ledger.CreditCents += acct.CreditCents
	}
	return ledger
}

func billExists(tx *gorm.DB, billID int) error {
	var count int64
	if err := tx.Model(&store.BillRecord{}).Where("bill_id = ?", billID).Count(&count).Error; err != nil {
		return fmt.Errorf("checking bill %d: %w", billID, err)
	}
	if count == 0 {
		return &model.NotFoundError{Kind: "bill", ID: billID}
	}
	return nil
}

func toEntry(r store.BillEntryRecord) model.BillEntry {
	return model.BillEntry{
		BillID:        r.BillID,
		RowNumber:     r.RowNumber,
		AccountID:     r.AccountID,
		Debit:         r.Debit,
		UnitCount:     r.UnitCount,
		UnitCostCents: r.UnitCostCents,
		Description:   r.Description,
	}
}

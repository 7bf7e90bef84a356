// Package bills manages expense and reimbursement bills: their fields,
// ledger lines, tags and images, and the users who pay them.
package bills

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/massikone/massikone/internal/history"
	"github.com/massikone/massikone/internal/journal"
	"github.com/massikone/massikone/internal/locale"
	"github.com/massikone/massikone/internal/model"
	"github.com/massikone/massikone/internal/store"
)

// EntryWriter validates and stores the ledger lines of a bill.
type EntryWriter interface {
	Accounts(ctx context.Context) (journal.AccountSet, error)
	Replace(tx *gorm.DB, billID int, entries []model.BillEntry, accounts journal.AccountChecker) error
}

// Service creates, updates and lists bills.
type Service struct {
	store   *store.Store
	entries EntryWriter
	log     *zap.Logger
}

// NewService creates a bills Service.
func NewService(st *store.Store, entries EntryWriter, log *zap.Logger) *Service {
	return &Service{store: st, entries: entries, log: log.Named("bills")}
}

// BillInput is the full editable state of a bill. Dates are YYYY-MM-DD.
// An update replaces every field.
type BillInput struct {
	Description     string           `json:"description" validate:"max=5000"`
	PaidDate        string           `json:"paid_date" validate:"omitempty,datetime=2006-01-02"`
	PaidUserID      int              `json:"paid_user_id" validate:"gte=0"`
	AmountCents     int64            `json:"amount_cents" validate:"gte=0"`
	DebitAccountID  int              `json:"debit_account_id" validate:"gte=0"`
	CreditAccountID int              `json:"credit_account_id" validate:"gte=0"`
	ClosedDate      string           `json:"closed_date" validate:"omitempty,datetime=2006-01-02"`
	ClosedType      model.ClosedType `json:"closed_type" validate:"omitempty,oneof=reimbursed denied"`
	ClosedUserID    int              `json:"closed_user_id" validate:"gte=0"`
	Images          []string         `json:"images" validate:"dive,imageid"`
	Tags            []string         `json:"tags"`
}

// Detail is a bill with the values its edit form shows.
type Detail struct {
	model.Bill
	DebitAccountID  int
	CreditAccountID int
	ClosedUserName  string
	PrevBillID      int // 0 when this is the first bill
	NextBillID      int // 0 when this is the last bill
}

// Summary is a bill as it appears in the bill list.
type Summary struct {
	ID           int
	PaidDate     string
	ClosedDate   string
	Description  string // first line, shortened
	PaidUserID   int
	PaidUserName string
	AmountCents  int64
	Tags         []string
	ImageMissing bool
}

// CompareBill is a bill reduced to what a bank statement can match.
type CompareBill struct {
	BillID      int
	Date        string
	Cents       int64
	Description string
}

func prepare(in BillInput) (BillInput, error) {
	if err := checkStruct(in); err != nil {
		return BillInput{}, err
	}
	tags, err := NormalizeTags(in.Tags)
	if err != nil {
		return BillInput{}, err
	}
	in.Tags = tags
	return in, nil
}

// Create inserts a bill stamped with today's date and applies in to it,
// all in one unit of work.
func (s *Service) Create(ctx context.Context, in BillInput, user model.User) (int, error) {
	in, err := prepare(in)
	if err != nil {
		return 0, err
	}
	accounts, err := s.entries.Accounts(ctx)
	if err != nil {
		return 0, err
	}

	var billID int
	err = s.store.Transaction(ctx, func(tx *gorm.DB) error {
		rec := store.BillRecord{CreatedDate: locale.Today()}
		if err := tx.Create(&rec).Error; err != nil {
			return fmt.Errorf("inserting bill: %w", err)
		}
		billID = rec.BillID
		return s.apply(tx, rec, in, user, accounts, history.OpCreate)
	})
	if err != nil {
		return 0, err
	}
	return billID, nil
}

// Update replaces a bill's fields, ledger lines, images and tags in one
// unit of work.
func (s *Service) Update(ctx context.Context, billID int, in BillInput, user model.User) error {
	in, err := prepare(in)
	if err != nil {
		return err
	}
	accounts, err := s.entries.Accounts(ctx)
	if err != nil {
		return err
	}
	return s.store.Transaction(ctx, func(tx *gorm.DB) error {
		cur, err := getBill(tx, billID)
		if err != nil {
			return err
		}
		return s.apply(tx, cur, in, user, accounts, history.OpUpdate)
	})
}

func (s *Service) apply(tx *gorm.DB, cur store.BillRecord, in BillInput, user model.User, accounts journal.AccountChecker, op history.Operation) error {
	existing, err := journal.EntriesForBills(tx, []int{cur.BillID})
	if err != nil {
		return err
	}

	rec := store.BillRecord{
		BillID:      cur.BillID,
		Description: in.Description,
		AmountCents: in.AmountCents,
		PaidDate:    store.NullString(in.PaidDate),
	}
	debitAccount, creditAccount := in.DebitAccountID, in.CreditAccountID
	if user.IsAdmin {
		rec.PaidUserID = store.NullInt(in.PaidUserID)
		rec.ClosedDate = store.NullString(in.ClosedDate)
		rec.ClosedType = store.NullString(string(in.ClosedType))
		rec.ClosedUserID = store.NullInt(in.ClosedUserID)
	} else {
		if err := checkOwnBill(cur, in, user, op); err != nil {
			return err
		}
		rec.PaidUserID = store.NullInt(user.ID)
		rec.ClosedDate, rec.ClosedType, rec.ClosedUserID = cur.ClosedDate, cur.ClosedType, cur.ClosedUserID
		debitAccount, creditAccount = entryAccounts(existing)
	}

	entries, err := billEntries(in.AmountCents, debitAccount, creditAccount)
	if err != nil {
		return err
	}
	if err := checkImagesExist(tx, in.Images); err != nil {
		return err
	}

	err = tx.Model(&rec).
		Select("description", "amount_cents", "paid_date", "paid_user_id", "closed_date", "closed_type", "closed_user_id").
		Updates(&rec).Error
	if err != nil {
		return fmt.Errorf("updating bill %d: %w", rec.BillID, err)
	}
	if err := s.entries.Replace(tx, rec.BillID, entries, accounts); err != nil {
		return err
	}
	if err := replaceImages(tx, rec.BillID, in.Images); err != nil {
		return err
	}
	if err := replaceTags(tx, rec.BillID, in.Tags); err != nil {
		return err
	}

	err = history.Record(tx, history.Entry{
		BillID:    rec.BillID,
		Operation: op,
		UserID:    user.ID,
		Details:   describe(in, debitAccount, creditAccount),
	})
	if err != nil {
		return err
	}
	s.log.Info("bill saved", zap.Int("bill_id", rec.BillID), zap.String("operation", string(op)), zap.Int("user_id", user.ID))
	return nil
}

// checkOwnBill limits non-admin users to their own open bills and to the
// fields a payer may edit.
func checkOwnBill(cur store.BillRecord, in BillInput, user model.User, op history.Operation) error {
	deny := func(reason string) error { return &model.PermissionError{UserID: user.ID, Reason: reason} }
	switch {
	case op == history.OpUpdate && store.Deref(cur.PaidUserID) != user.ID:
		return deny(fmt.Sprintf("bill %d belongs to another user", cur.BillID))
	case cur.ClosedDate != nil:
		return deny(fmt.Sprintf("bill %d is closed", cur.BillID))
	case in.PaidUserID != 0 && in.PaidUserID != user.ID:
		return deny("only admins can record bills paid by others")
	case in.DebitAccountID != 0 || in.CreditAccountID != 0:
		return deny("only admins can set accounts")
	case in.ClosedDate != "" || in.ClosedType != "" || in.ClosedUserID != 0:
		return deny("only admins can close bills")
	}
	return nil
}

// billEntries builds the two-line form of a bill. Without accounts a bill
// has no entries and keeps only its submitted amount.
func billEntries(amountCents int64, debitAccount, creditAccount int) ([]model.BillEntry, error) {
	switch {
	case debitAccount == 0 && creditAccount == 0:
		return nil, nil
	case debitAccount == 0:
		return nil, &model.ValidationError{Field: "debit_account_id", Reason: "required when credit_account_id is set"}
	case creditAccount == 0:
		return nil, &model.ValidationError{Field: "credit_account_id", Reason: "required when debit_account_id is set"}
	}
	return journal.TwoLineEntries(amountCents, debitAccount, creditAccount), nil
}

// entryAccounts returns the first debit and first credit account of
// entries, 0 for a missing side.
func entryAccounts(entries []model.BillEntry) (debit, credit int) {
	for _, e := range entries {
		if e.Debit && debit == 0 {
			debit = e.AccountID
		}
		if !e.Debit && credit == 0 {
			credit = e.AccountID
		}
	}
	return debit, credit
}

func describe(in BillInput, debitAccount, creditAccount int) string {
	parts := []string{"amount=" + locale.FormatCentsSigned(in.AmountCents)}
	if in.PaidDate != "" {
		parts = append(parts, "paid="+in.PaidDate)
	}
	if debitAccount != 0 {
		parts = append(parts, fmt.Sprintf("debit=%d credit=%d", debitAccount, creditAccount))
	}
	if in.ClosedDate != "" {
		parts = append(parts, fmt.Sprintf("closed=%s/%s", in.ClosedDate, in.ClosedType))
	}
	if len(in.Images) > 0 {
		parts = append(parts, fmt.Sprintf("images=%d", len(in.Images)))
	}
	if len(in.Tags) > 0 {
		parts = append(parts, "tags="+strings.Join(in.Tags, " "))
	}
	return strings.Join(parts, " ")
}

func getBill(tx *gorm.DB, billID int) (store.BillRecord, error) {
	var rec store.BillRecord
	if err := tx.Where("bill_id = ?", billID).Take(&rec).Error; err != nil {
		if store.IsNotFound(err) {
			return rec, &model.NotFoundError{Kind: "bill", ID: billID}
		}
		return rec, fmt.Errorf("reading bill %d: %w", billID, err)
	}
	return rec, nil
}

func billAmount(rec store.BillRecord, entries []model.BillEntry) int64 {
	if len(entries) == 0 {
		return rec.AmountCents
	}
	return model.BillAmount(entries)
}

// Get returns a bill with its entries, tags, images, amount, accounts and
// neighbouring bill ids.
func (s *Service) Get(ctx context.Context, billID int) (Detail, error) {
	var d Detail
	err := s.store.Transaction(ctx, func(tx *gorm.DB) error {
		rec, err := getBill(tx, billID)
		if err != nil {
			return err
		}
		entries, err := journal.EntriesForBills(tx, []int{billID})
		if err != nil {
			return err
		}
		tags, err := billTags(tx, []int{billID})
		if err != nil {
			return err
		}
		images, err := billImages(tx, []int{billID})
		if err != nil {
			return err
		}
		names, err := userNames(tx)
		if err != nil {
			return err
		}

		d.Bill = toBill(rec, names)
		d.Entries = entries
		d.Tags = tags[billID]
		d.Images = images[billID]
		d.AmountCents = billAmount(rec, entries)
		d.DebitAccountID, d.CreditAccountID = entryAccounts(entries)
		d.ClosedUserName = names[d.ClosedUserID]

		err = tx.Model(&store.BillRecord{}).Where("bill_id < ?", billID).
			Select("COALESCE(MAX(bill_id), 0)").Row().Scan(&d.PrevBillID)
		if err != nil {
			return fmt.Errorf("finding previous bill: %w", err)
		}
		err = tx.Model(&store.BillRecord{}).Where("bill_id > ?", billID).
			Select("COALESCE(MIN(bill_id), 0)").Row().Scan(&d.NextBillID)
		if err != nil {
			return fmt.Errorf("finding next bill: %w", err)
		}
		return nil
	})
	return d, err
}

// List returns the bills visible to user, all of them for admins and the
// user's own otherwise, together with the sorted union of their tags.
func (s *Service) List(ctx context.Context, user model.User) ([]Summary, []string, error) {
	var bills []Summary
	var allTags []string
	err := s.store.Transaction(ctx, func(tx *gorm.DB) error {
		q := tx.Order("bill_id")
		if !user.IsAdmin {
			q = q.Where("paid_user_id = ?", user.ID)
		}
		var records []store.BillRecord
		if err := q.Find(&records).Error; err != nil {
			return fmt.Errorf("listing bills: %w", err)
		}

		ids := make([]int, len(records))
		for i, r := range records {
			ids[i] = r.BillID
		}
		entries, err := journal.EntriesForBills(tx, ids)
		if err != nil {
			return err
		}
		byBill := make(map[int][]model.BillEntry)
		for _, e := range entries {
			byBill[e.BillID] = append(byBill[e.BillID], e)
		}
		tags, err := billTags(tx, ids)
		if err != nil {
			return err
		}
		images, err := billImages(tx, ids)
		if err != nil {
			return err
		}
		names, err := userNames(tx)
		if err != nil {
			return err
		}

		seen := make(map[string]bool)
		for _, r := range records {
			bills = append(bills, Summary{
				ID:           r.BillID,
				PaidDate:     store.Deref(r.PaidDate),
				ClosedDate:   store.Deref(r.ClosedDate),
				Description:  Shorten(r.Description),
				PaidUserID:   store.Deref(r.PaidUserID),
				PaidUserName: names[store.Deref(r.PaidUserID)],
				AmountCents:  billAmount(r, byBill[r.BillID]),
				Tags:         tags[r.BillID],
				ImageMissing: len(images[r.BillID]) == 0,
			})
			for _, t := range tags[r.BillID] {
				if !seen[t] {
					seen[t] = true
					allTags = append(allTags, t)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	sort.Strings(allTags)
	return bills, allTags, nil
}

// ForCompare returns every bill's date, amount and short description for
// matching against a bank statement. Only admins may compare.
func (s *Service) ForCompare(ctx context.Context, user model.User) ([]CompareBill, error) {
	if !user.IsAdmin {
		return nil, &model.PermissionError{UserID: user.ID, Reason: "only admins can compare bills"}
	}
	all, _, err := s.List(ctx, user)
	if err != nil {
		return nil, err
	}
	out := make([]CompareBill, len(all))
	for i, b := range all {
		out[i] = CompareBill{BillID: b.ID, Date: b.PaidDate, Cents: b.AmountCents, Description: b.Description}
	}
	return out, nil
}

func toBill(rec store.BillRecord, names map[int]string) model.Bill {
	b := model.Bill{
		ID:           rec.BillID,
		Description:  rec.Description,
		PaidDate:     store.Deref(rec.PaidDate),
		PaidUserID:   store.Deref(rec.PaidUserID),
		ClosedDate:   store.Deref(rec.ClosedDate),
		ClosedType:   model.ClosedType(store.Deref(rec.ClosedType)),
		ClosedUserID: store.Deref(rec.ClosedUserID),
		CreatedDate:  rec.CreatedDate,
		AmountCents:  rec.AmountCents,
	}
	b.PaidUserName = names[b.PaidUserID]
	return b
}

// Package history keeps the append-only audit trail of bill changes.
package history

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/massikone/massikone/internal/store"
)

// Operation names a kind of bill change.
type Operation string

const (
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
)

// Entry is one row of a bill's history.
type Entry struct {
	Timestamp time.Time
	BillID    int
	Operation Operation
	UserID    int // 0 when not known
	Details   string
}

// Header is the CSV header written by WriteCSV.
const Header = "timestamp,bill_id,operation,user_id,details"

const (
	numFields    = 5
	colTimestamp = 0
	colBillID    = 1
	colOperation = 2
	colUserID    = 3
	colDetails   = 4
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.UTC().Format(time.RFC3339)
	row[colBillID] = strconv.Itoa(e.BillID)
	row[colOperation] = string(e.Operation)
	if e.UserID != 0 {
		row[colUserID] = strconv.Itoa(e.UserID)
	}
	row[colDetails] = e.Details
	return row
}

// WriteCSV writes entries with a header row.
func WriteCSV(w io.Writer, entries []Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Record appends e inside the caller's unit of work. A zero timestamp is
// replaced by the current time.
func Record(tx *gorm.DB, e Entry) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	rec := store.HistoryRecord{
		BillID:    e.BillID,
		Timestamp: e.Timestamp.UTC(),
		Operation: string(e.Operation),
		UserID:    store.NullInt(e.UserID),
		Details:   e.Details,
	}
	if err := tx.Create(&rec).Error; err != nil {
		return fmt.Errorf("recording %s of bill %d: %w", e.Operation, e.BillID, err)
	}
	return nil
}

// Service reads bill history.
type Service struct {
	store *store.Store
}

// NewService creates a history Service.
func NewService(st *store.Store) *Service {
	return &Service{store: st}
}

// ForBill returns a bill's history, oldest first.
func (s *Service) ForBill(ctx context.Context, billID int) ([]Entry, error) {
	var records []store.HistoryRecord
	err := s.store.DB(ctx).Where("bill_id = ?", billID).Order("history_id").Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("reading history of bill %d: %w", billID, err)
	}
	entries := make([]Entry, len(records))
	for i, r := range records {
		entries[i] = Entry{
			Timestamp: r.Timestamp,
			BillID:    r.BillID,
			Operation: Operation(r.Operation),
			UserID:    store.Deref(r.UserID),
			Details:   r.Details,
		}
	}
	return entries, nil
}

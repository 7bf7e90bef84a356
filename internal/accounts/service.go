package accounts

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/massikone/massikone/internal/model"
	"github.com/massikone/massikone/internal/store"
)

// Service materializes a chart of accounts into per-period rows and reads
// them back as display-ready account trees.
type Service struct {
	store *store.Store
	chart []ChartNode
	log   *zap.Logger
}

// NewService creates a Service seeding periods from chart.
func NewService(st *store.Store, chart []ChartNode, log *zap.Logger) *Service {
	return &Service{store: st, chart: chart, log: log.Named("accounts")}
}

// Chart returns the chart the service seeds from.
func (s *Service) Chart() []ChartNode {
	return s.chart
}

// Seed copies the chart into the period's account rows. It does nothing
// when the period already has rows.
func (s *Service) Seed(ctx context.Context, periodID int) error {
	return s.store.Transaction(ctx, func(tx *gorm.DB) error {
		_, err := s.seed(tx, periodID)
		return err
	})
}

// seed runs inside tx and returns the period it seeded.
func (s *Service) seed(tx *gorm.DB, periodID int) (model.Period, error) {
	period, err := getPeriod(tx, periodID)
	if err != nil {
		return model.Period{}, err
	}

	var count int64
	if err := tx.Model(&store.PeriodAccountRecord{}).Where("period_id = ?", periodID).Count(&count).Error; err != nil {
		return model.Period{}, fmt.Errorf("counting period accounts: %w", err)
	}
	if count > 0 {
		return period, nil
	}

	records := make([]store.PeriodAccountRecord, 0, len(s.chart))
	for _, n := range s.chart {
		records = append(records, store.PeriodAccountRecord{
			PeriodID:     periodID,
			AccountID:    n.RawAccountID,
			NestingLevel: n.NestingLevel,
			AccountType:  string(n.Type),
			Title:        n.Title,
		})
	}
	if len(records) > 0 {
		if err := tx.CreateInBatches(records, 100).Error; err != nil {
			return model.Period{}, fmt.Errorf("seeding period %d accounts: %w", periodID, err)
		}
	}
	s.log.Info("seeded period accounts", zap.Int("period_id", periodID), zap.Int("rows", len(records)))
	return period, nil
}

// GetAccounts returns the period's account tree in chart order, seeding
// the period first if needed. With usedOnly, accounts without entries in
// the period are dropped, and so are headings left without any account
// below them.
func (s *Service) GetAccounts(ctx context.Context, periodID int, usedOnly bool) ([]model.AccountRow, error) {
	var rows []model.AccountRow
	err := s.store.Transaction(ctx, func(tx *gorm.DB) error {
		period, err := s.seed(tx, periodID)
		if err != nil {
			return err
		}

		var records []store.PeriodAccountRecord
		if err := tx.Where("period_id = ?", periodID).
			Order("account_id, nesting_level").
			Find(&records).Error; err != nil {
			return fmt.Errorf("reading period accounts: %w", err)
		}
		rows = make([]model.AccountRow, 0, len(records))
		for _, r := range records {
			rows = append(rows, displayRow(r.AccountID, r.Title, model.AccountType(r.AccountType), r.NestingLevel))
		}

		if usedOnly {
			used, err := usedAccounts(tx, period)
			if err != nil {
				return err
			}
			rows = filterUsed(rows, used)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// AccountMap returns the postable accounts of a period by id. It must not
// be called inside another unit of work.
func (s *Service) AccountMap(ctx context.Context, periodID int) (map[int]model.Account, error) {
	rows, err := s.GetAccounts(ctx, periodID, false)
	if err != nil {
		return nil, err
	}
	accounts := make(map[int]model.Account)
	for _, r := range rows {
		if r.IsHeading() {
			continue
		}
		accounts[r.AccountID] = model.Account{ID: r.AccountID, Title: r.Title, Type: r.Type}
	}
	return accounts, nil
}

func usedAccounts(tx *gorm.DB, period model.Period) (map[int]bool, error) {
	var ids []int
	err := tx.Model(&store.BillEntryRecord{}).
		Joins("JOIN bill ON bill.bill_id = bill_entry.bill_id").
		Scopes(store.PaidWithin(period)).
		Distinct().
		Pluck("bill_entry.account_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("finding used accounts: %w", err)
	}
	used := make(map[int]bool, len(ids))
	for _, id := range ids {
		used[id] = true
	}
	return used, nil
}

// filterUsed keeps used accounts and the headings that still have a used
// account before the next heading at the same or a shallower depth.
func filterUsed(rows []model.AccountRow, used map[int]bool) []model.AccountRow {
	var out []model.AccountRow
	for i, r := range rows {
		if !r.IsHeading() {
			if used[r.AccountID] {
				out = append(out, r)
			}
			continue
		}
		for _, next := range rows[i+1:] {
			if next.IsHeading() {
				if next.NestingLevel <= r.NestingLevel {
					break
				}
				continue
			}
			if used[next.AccountID] {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

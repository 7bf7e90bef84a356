package store

import (
	"gorm.io/gorm"

	"github.com/massikone/massikone/internal/model"
)

// PaidWithin limits a query joined with bill to bills paid inside the
// period. A fully open period also keeps unpaid bills.
func PaidWithin(p model.Period) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if p.StartDate == "" && p.EndDate == "" {
			return db
		}
		db = db.Where("bill.paid_date IS NOT NULL")
		if p.StartDate != "" {
			db = db.Where("bill.paid_date >= ?", p.StartDate)
		}
		if p.EndDate != "" {
			db = db.Where("bill.paid_date <= ?", p.EndDate)
		}
		return db
	}
}

// ToPeriod converts a period row to the domain type.
func (r PeriodRecord) ToPeriod() model.Period {
	return model.Period{ID: r.PeriodID, StartDate: Deref(r.StartDate), EndDate: Deref(r.EndDate)}
}

// NullString maps "" to nil for nullable text columns.
func NullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// NullInt maps 0 to nil for nullable id columns.
func NullInt(i int) *int {
	if i == 0 {
		return nil
	}
	return &i
}

// Deref returns the pointed-to value or the zero value for nil.
func Deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

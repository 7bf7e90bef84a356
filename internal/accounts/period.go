package accounts

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/massikone/massikone/internal/model"
	"github.com/massikone/massikone/internal/store"
)

// CreatePeriod adds a period. Either date may be empty for an open end.
func (s *Service) CreatePeriod(ctx context.Context, start, end string) (model.Period, error) {
	if err := validatePeriod(start, end); err != nil {
		return model.Period{}, err
	}
	rec := store.PeriodRecord{StartDate: store.NullString(start), EndDate: store.NullString(end)}
	if err := s.store.DB(ctx).Create(&rec).Error; err != nil {
		return model.Period{}, fmt.Errorf("creating period: %w", err)
	}
	return rec.ToPeriod(), nil
}

// GetPeriod returns a period by id.
func (s *Service) GetPeriod(ctx context.Context, id int) (model.Period, error) {
	return getPeriod(s.store.DB(ctx), id)
}

// EnsureDefaultPeriod returns the first period, creating it with the given
// bounds when there is none yet and updating its bounds when they changed.
func (s *Service) EnsureDefaultPeriod(ctx context.Context, start, end string) (model.Period, error) {
	if err := validatePeriod(start, end); err != nil {
		return model.Period{}, err
	}
	var period model.Period
	err := s.store.Transaction(ctx, func(tx *gorm.DB) error {
		var rec store.PeriodRecord
		res := tx.Order("period_id").Limit(1).Find(&rec)
		if res.Error != nil {
			return fmt.Errorf("finding default period: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			rec = store.PeriodRecord{StartDate: store.NullString(start), EndDate: store.NullString(end)}
			if err := tx.Create(&rec).Error; err != nil {
				return fmt.Errorf("creating default period: %w", err)
			}
			s.log.Info("created default period", zap.Int("period_id", rec.PeriodID))
		} else if p := rec.ToPeriod(); p.StartDate != start || p.EndDate != end {
			rec.StartDate = store.NullString(start)
			rec.EndDate = store.NullString(end)
			if err := tx.Save(&rec).Error; err != nil {
				return fmt.Errorf("updating default period: %w", err)
			}
		}
		period = rec.ToPeriod()
		return nil
	})
	return period, err
}

func getPeriod(db *gorm.DB, id int) (model.Period, error) {
	var rec store.PeriodRecord
	if err := db.First(&rec, "period_id = ?", id).Error; err != nil {
		if store.IsNotFound(err) {
			return model.Period{}, &model.NotFoundError{Kind: "period", ID: id}
		}
		return model.Period{}, fmt.Errorf("getting period %d: %w", id, err)
	}
	return rec.ToPeriod(), nil
}

func validatePeriod(start, end string) error {
	for field, d := range map[string]string{"start_date": start, "end_date": end} {
		if d == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", d); err != nil {
			return &model.ValidationError{Field: field, Reason: fmt.Sprintf("%q is not a YYYY-MM-DD date", d)}
		}
	}
	if start != "" && end != "" && start > end {
		return &model.ValidationError{Field: "end_date", Reason: "period ends before it starts"}
	}
	return nil
}

package bills

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/massikone/massikone/internal/model"
	"github.com/massikone/massikone/internal/store"
)

// NormalizeTags splits whitespace separated tags, checks that each is
// ASCII alphanumeric and returns them sorted without duplicates.
func NormalizeTags(tags []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, field := range tags {
		for _, tag := range strings.Fields(field) {
			if err := validate.Var(tag, "alphanum"); err != nil {
				return nil, &model.ValidationError{Field: "tags", Reason: fmt.Sprintf("invalid tag %q", tag)}
			}
			if !seen[tag] {
				seen[tag] = true
				out = append(out, tag)
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

// AvailableTags returns the tags users may choose from when tagging
// bills. Bills may still carry tags that are no longer available.
func (s *Service) AvailableTags(ctx context.Context) ([]string, error) {
	var tags []string
	if err := s.store.DB(ctx).Model(&store.TagRecord{}).Order("tag").Pluck("tag", &tags).Error; err != nil {
		return nil, fmt.Errorf("reading available tags: %w", err)
	}
	return tags, nil
}

// PutAvailableTags replaces the available tags.
func (s *Service) PutAvailableTags(ctx context.Context, tags []string) error {
	tags, err := NormalizeTags(tags)
	if err != nil {
		return err
	}
	return s.store.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&store.TagRecord{}).Error; err != nil {
			return fmt.Errorf("clearing available tags: %w", err)
		}
		if len(tags) == 0 {
			return nil
		}
		records := make([]store.TagRecord, len(tags))
		for i, t := range tags {
			records[i] = store.TagRecord{Tag: t}
		}
		if err := tx.Create(&records).Error; err != nil {
			return fmt.Errorf("storing available tags: %w", err)
		}
		return nil
	})
}

func billTags(db *gorm.DB, billIDs []int) (map[int][]string, error) {
	out := make(map[int][]string)
	if len(billIDs) == 0 {
		return out, nil
	}
	var records []store.BillTagRecord
	if err := db.Where("bill_id IN ?", billIDs).Order("bill_id, tag").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("reading bill tags: %w", err)
	}
	for _, r := range records {
		out[r.BillID] = append(out[r.BillID], r.Tag)
	}
	return out, nil
}

func replaceTags(tx *gorm.DB, billID int, tags []string) error {
	if err := tx.Where("bill_id = ?", billID).Delete(&store.BillTagRecord{}).Error; err != nil {
		return fmt.Errorf("deleting tags of bill %d: %w", billID, err)
	}
	if len(tags) == 0 {
		return nil
	}
	records := make([]store.BillTagRecord, len(tags))
	for i, t := range tags {
		records[i] = store.BillTagRecord{BillID: billID, Tag: t}
	}
	if err := tx.Create(&records).Error; err != nil {
		return fmt.Errorf("inserting tags of bill %d: %w", billID, err)
	}
	return nil
}

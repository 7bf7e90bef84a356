package bills

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/massikone/massikone/internal/id"
	"github.com/massikone/massikone/internal/model"
	"github.com/massikone/massikone/internal/store"
)

// BillImage is one image slot of a bill, for archiving.
type BillImage struct {
	BillID       int
	BillImageNum int
	ImageID      string
	Description  string
}

// StoreImage stores image data under its content address and returns the
// image id. An empty format is sniffed from the data. Storing the same
// bytes twice yields the same id and one row.
func (s *Service) StoreImage(ctx context.Context, data []byte, format string) (string, error) {
	if format == "" {
		f, err := id.DetectFormat(data)
		if err != nil {
			return "", &model.ValidationError{Field: "image", Reason: err.Error()}
		}
		format = f
	}
	imageID, err := id.ImageID(data, format)
	if err != nil {
		return "", &model.ValidationError{Field: "image", Reason: err.Error()}
	}
	err = s.store.DB(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&store.ImageRecord{ImageID: imageID, ImageData: data}).Error
	if err != nil {
		return "", fmt.Errorf("storing image %s: %w", imageID, err)
	}
	s.log.Debug("stored image", zap.String("image_id", imageID), zap.Int("bytes", len(data)))
	return imageID, nil
}

// ImageData returns the bytes of a stored image.
func (s *Service) ImageData(ctx context.Context, imageID string) ([]byte, error) {
	if !id.ValidImageID(imageID) {
		return nil, &model.ValidationError{Field: "image_id", Reason: fmt.Sprintf("malformed image id %q", imageID)}
	}
	var rec store.ImageRecord
	if err := s.store.DB(ctx).Where("image_id = ?", imageID).Take(&rec).Error; err != nil {
		if store.IsNotFound(err) {
			return nil, &model.NotFoundError{Kind: "image", ID: imageID}
		}
		return nil, fmt.Errorf("reading image %s: %w", imageID, err)
	}
	return rec.ImageData, nil
}

// BillsForImages lists every image of every bill in bill and image order,
// and the ids of bills that have no image at all.
func (s *Service) BillsForImages(ctx context.Context) ([]BillImage, []int, error) {
	var out []BillImage
	var missing []int
	err := s.store.Transaction(ctx, func(tx *gorm.DB) error {
		var records []store.BillRecord
		if err := tx.Order("bill_id").Find(&records).Error; err != nil {
			return fmt.Errorf("listing bills: %w", err)
		}
		ids := make([]int, len(records))
		for i, r := range records {
			ids[i] = r.BillID
		}
		images, err := billImages(tx, ids)
		if err != nil {
			return err
		}
		for _, r := range records {
			if len(images[r.BillID]) == 0 {
				missing = append(missing, r.BillID)
				continue
			}
			for i, imageID := range images[r.BillID] {
				out = append(out, BillImage{BillID: r.BillID, BillImageNum: i + 1, ImageID: imageID, Description: r.Description})
			}
		}
		return nil
	})
	return out, missing, err
}

// billImages returns image ids per bill ordered by bill_image_num.
func billImages(db *gorm.DB, billIDs []int) (map[int][]string, error) {
	out := make(map[int][]string)
	if len(billIDs) == 0 {
		return out, nil
	}
	var records []store.BillImageRecord
	if err := db.Where("bill_id IN ?", billIDs).Order("bill_id, bill_image_num").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("reading bill images: %w", err)
	}
	for _, r := range records {
		out[r.BillID] = append(out[r.BillID], r.ImageID)
	}
	return out, nil
}

func checkImagesExist(tx *gorm.DB, imageIDs []string) error {
	if len(imageIDs) == 0 {
		return nil
	}
	var found []string
	if err := tx.Model(&store.ImageRecord{}).Where("image_id IN ?", imageIDs).Pluck("image_id", &found).Error; err != nil {
		return fmt.Errorf("checking images: %w", err)
	}
	have := make(map[string]bool, len(found))
	for _, f := range found {
		have[f] = true
	}
	for _, imageID := range imageIDs {
		if !have[imageID] {
			return &model.NotFoundError{Kind: "image", ID: imageID}
		}
	}
	return nil
}

func replaceImages(tx *gorm.DB, billID int, imageIDs []string) error {
	if err := tx.Where("bill_id = ?", billID).Delete(&store.BillImageRecord{}).Error; err != nil {
		return fmt.Errorf("deleting images of bill %d: %w", billID, err)
	}
	if len(imageIDs) == 0 {
		return nil
	}
	records := make([]store.BillImageRecord, len(imageIDs))
	for i, imageID := range imageIDs {
		records[i] = store.BillImageRecord{BillID: billID, BillImageNum: i + 1, ImageID: imageID}
	}
	if err := tx.Create(&records).Error; err != nil {
		return fmt.Errorf("inserting images of bill %d: %w", billID, err)
	}
	return nil
}

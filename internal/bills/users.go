package bills

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/massikone/massikone/internal/model"
	"github.com/massikone/massikone/internal/store"
)

// UserInput is a new user.
type UserInput struct {
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"full_name" validate:"required,max=200"`
}

// AddUser creates a user. The first user of the books becomes an admin.
func (s *Service) AddUser(ctx context.Context, in UserInput) (model.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.FullName, _ = FullAndShortName(in.FullName)
	if err := checkStruct(in); err != nil {
		return model.User{}, err
	}

	var user model.User
	err := s.store.Transaction(ctx, func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&store.UserRecord{}).Count(&count).Error; err != nil {
			return fmt.Errorf("counting users: %w", err)
		}
		rec := store.UserRecord{Email: in.Email, FullName: in.FullName, IsAdmin: count == 0}
		if err := tx.Create(&rec).Error; err != nil {
			if store.IsDuplicateKeyErr(err) {
				return &model.ValidationError{Field: "email", Reason: fmt.Sprintf("%s is already a user", in.Email)}
			}
			return fmt.Errorf("inserting user: %w", err)
		}
		user = toUser(rec)
		return nil
	})
	if err != nil {
		return model.User{}, err
	}
	if user.IsAdmin {
		s.log.Info("created first user as admin", zap.Int("user_id", user.ID))
	}
	return user, nil
}

// GetUser returns a user by id.
func (s *Service) GetUser(ctx context.Context, userID int) (model.User, error) {
	return s.findUser(ctx, "user_id = ?", userID)
}

// UserByEmail returns a user by email address.
func (s *Service) UserByEmail(ctx context.Context, email string) (model.User, error) {
	return s.findUser(ctx, "email = ?", strings.TrimSpace(email))
}

func (s *Service) findUser(ctx context.Context, cond string, arg any) (model.User, error) {
	var rec store.UserRecord
	if err := s.store.DB(ctx).Where(cond, arg).Take(&rec).Error; err != nil {
		if store.IsNotFound(err) {
			return model.User{}, &model.NotFoundError{Kind: "user", ID: arg}
		}
		return model.User{}, fmt.Errorf("reading user: %w", err)
	}
	return toUser(rec), nil
}

// ListUsers returns all users ordered by name.
func (s *Service) ListUsers(ctx context.Context) ([]model.User, error) {
	var records []store.UserRecord
	if err := s.store.DB(ctx).Order("user_id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	users := make([]model.User, len(records))
	for i, r := range records {
		users[i] = toUser(r)
	}
	sort.SliceStable(users, func(i, j int) bool {
		return strings.ToLower(users[i].FullName) < strings.ToLower(users[j].FullName)
	})
	return users, nil
}

func toUser(r store.UserRecord) model.User {
	full, short := FullAndShortName(r.FullName)
	return model.User{ID: r.UserID, Email: r.Email, FullName: full, ShortName: short, IsAdmin: r.IsAdmin}
}

func userNames(db *gorm.DB) (map[int]string, error) {
	var records []store.UserRecord
	if err := db.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("reading users: %w", err)
	}
	names := make(map[int]string, len(records))
	for _, r := range records {
		names[r.UserID], _ = FullAndShortName(r.FullName)
	}
	return names, nil
}

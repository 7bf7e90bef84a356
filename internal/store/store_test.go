package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/massikone/massikone/internal/store"
	"github.com/massikone/massikone/internal/store/storetest"
)

func TestOpenMigrates(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()

	assert.Equal(t, store.DialectSQLite, s.Dialect())
	for _, table := range []string{"app_user", "period", "period_account", "bill", "bill_entry", "tag", "bill_tag", "image", "bill_image", "bill_history"} {
		assert.True(t, s.DB(ctx).Migrator().HasTable(table), "table %s", table)
	}
}

func TestOpenEmptyURL(t *testing.T) {
	_, err := store.Open(context.Background(), "", nil)
	assert.Error(t, err)
}

func TestTransactionCommit(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()

	err := s.Transaction(ctx, func(tx *gorm.DB) error {
		return tx.Create(&store.BillRecord{Description: "Taxi", CreatedDate: "2024-01-01"}).Error
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, s.DB(ctx).Model(&store.BillRecord{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestTransactionRollback(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&store.BillRecord{Description: "Taxi", CreatedDate: "2024-01-01"}).Error; err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var count int64
	require.NoError(t, s.DB(ctx).Model(&store.BillRecord{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestIsDuplicateKeyErr(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()

	require.NoError(t, s.DB(ctx).Create(&store.TagRecord{Tag: "travel"}).Error)
	err := s.DB(ctx).Create(&store.TagRecord{Tag: "travel"}).Error
	require.Error(t, err)
	assert.True(t, store.IsDuplicateKeyErr(err))

	assert.False(t, store.IsDuplicateKeyErr(nil))
	assert.False(t, store.IsDuplicateKeyErr(errors.New("other")))
}

func TestIsNotFound(t *testing.T) {
	s := storetest.New(t)
	var rec store.BillRecord
	err := s.DB(context.Background()).First(&rec, 42).Error
	assert.True(t, store.IsNotFound(err))
}

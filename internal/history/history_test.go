package history

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/massikone/massikone/internal/store"
	"github.com/massikone/massikone/internal/store/storetest"
)

var testTime = time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)

func addBill(t *testing.T, st *store.Store) int {
	t.Helper()
	bill := store.BillRecord{Description: "Train", CreatedDate: "2025-01-15"}
	require.NoError(t, st.DB(context.Background()).Create(&bill).Error)
	return bill.BillID
}

func TestRecordAndForBill(t *testing.T) {
	st := storetest.New(t)
	ctx := context.Background()
	billID := addBill(t, st)
	other := addBill(t, st)

	err := st.Transaction(ctx, func(tx *gorm.DB) error {
		if err := Record(tx, Entry{Timestamp: testTime, BillID: billID, Operation: OpCreate, Details: "amount=12,00"}); err != nil {
			return err
		}
		if err := Record(tx, Entry{BillID: other, Operation: OpCreate}); err != nil {
			return err
		}
		return Record(tx, Entry{Timestamp: testTime.Add(time.Hour), BillID: billID, Operation: OpUpdate})
	})
	require.NoError(t, err)

	entries, err := NewService(st).ForBill(ctx, billID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, OpCreate, entries[0].Operation)
	assert.Equal(t, "amount=12,00", entries[0].Details)
	assert.Equal(t, 0, entries[0].UserID)
	assert.True(t, testTime.Equal(entries[0].Timestamp), "got %v", entries[0].Timestamp)
	assert.Equal(t, OpUpdate, entries[1].Operation)
}

func TestRecordRollsBackWithUnitOfWork(t *testing.T) {
	st := storetest.New(t)
	ctx := context.Background()
	billID := addBill(t, st)

	err := st.Transaction(ctx, func(tx *gorm.DB) error {
		if err := Record(tx, Entry{BillID: billID, Operation: OpUpdate}); err != nil {
			return err
		}
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	entries, err := NewService(st).ForBill(ctx, billID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, []Entry{
		{Timestamp: testTime, BillID: 3, Operation: OpCreate, UserID: 1, Details: "tags=a, b"},
		{Timestamp: testTime, BillID: 3, Operation: OpUpdate},
	})
	require.NoError(t, err)
	assert.Equal(t, Header+"\n"+
		"2025-01-15T10:30:00Z,3,create,1,\"tags=a, b\"\n"+
		"2025-01-15T10:30:00Z,3,update,,\n", buf.String())
}

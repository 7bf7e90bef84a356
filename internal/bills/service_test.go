package bills

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/massikone/massikone/internal/accounts"
	"github.com/massikone/massikone/internal/history"
	"github.com/massikone/massikone/internal/journal"
	"github.com/massikone/massikone/internal/model"
	"github.com/massikone/massikone/internal/store"
	"github.com/massikone/massikone/internal/store/storetest"
)

const testChart = "header\nA;1910;Bank;0\nA;2950;Reimbursements;0\nA;3000;Fees;0\nA;4300;Travel;0\n"

type fixture struct {
	svc     *Service
	store   *store.Store
	journal *journal.Service
	admin   model.User
	member  model.User
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	chart, err := accounts.LoadChart(strings.NewReader(testChart))
	require.NoError(t, err)
	st := storetest.New(t)
	acctSvc := accounts.NewService(st, chart, zap.NewNop())
	period, err := acctSvc.EnsureDefaultPeriod(ctx, "", "")
	require.NoError(t, err)
	jsvc := journal.NewService(st, acctSvc, period.ID, zap.NewNop())

	f := fixture{svc: NewService(st, jsvc, zap.NewNop()), store: st, journal: jsvc}
	f.admin, err = f.svc.AddUser(ctx, UserInput{Email: "anna@example.com", FullName: "anna virtanen"})
	require.NoError(t, err)
	f.member, err = f.svc.AddUser(ctx, UserInput{Email: "pekka@example.com", FullName: "Pekka Mäkinen"})
	require.NoError(t, err)
	return f
}

func (f fixture) storeImage(t *testing.T, data string) string {
	t.Helper()
	imageID, err := f.svc.StoreImage(context.Background(), []byte(data), "png")
	require.NoError(t, err)
	return imageID
}

func TestCreateAndGet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	img1 := f.storeImage(t, "first")
	img2 := f.storeImage(t, "second")

	billID, err := f.svc.Create(ctx, BillInput{
		Description:     "Train tickets\nHelsinki - Tampere",
		PaidDate:        "2024-03-01",
		PaidUserID:      f.member.ID,
		AmountCents:     4250,
		DebitAccountID:  4300,
		CreditAccountID: 2950,
		Images:          []string{img2, img1},
		Tags:            []string{"travel board", "travel"},
	}, f.admin)
	require.NoError(t, err)

	d, err := f.svc.Get(ctx, billID)
	require.NoError(t, err)
	assert.Equal(t, "Train tickets\nHelsinki - Tampere", d.Description)
	assert.Equal(t, "2024-03-01", d.PaidDate)
	assert.Equal(t, f.member.ID, d.PaidUserID)
	assert.Equal(t, "Pekka Mäkinen", d.PaidUserName)
	assert.NotEmpty(t, d.CreatedDate)
	assert.True(t, d.IsOpen())
	assert.Equal(t, int64(4250), d.AmountCents)
	assert.Equal(t, 4300, d.DebitAccountID)
	assert.Equal(t, 2950, d.CreditAccountID)
	assert.Equal(t, []string{img2, img1}, d.Images)
	assert.Equal(t, []string{"board", "travel"}, d.Tags)
	require.Len(t, d.Entries, 2)
	assert.Equal(t, "Credit", d.Entries[0].Description)
	assert.Equal(t, 0, d.PrevBillID)
	assert.Equal(t, 0, d.NextBillID)

	entries, err := history.NewService(f.store).ForBill(ctx, billID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, history.OpCreate, entries[0].Operation)
	assert.Equal(t, f.admin.ID, entries[0].UserID)
	assert.Contains(t, entries[0].Details, "amount=42,50")
}

func TestGetNeighboursAndUnknown(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	var ids []int
	for range 3 {
		billID, err := f.svc.Create(ctx, BillInput{Description: "x"}, f.admin)
		require.NoError(t, err)
		ids = append(ids, billID)
	}

	d, err := f.svc.Get(ctx, ids[1])
	require.NoError(t, err)
	assert.Equal(t, ids[0], d.PrevBillID)
	assert.Equal(t, ids[2], d.NextBillID)

	_, err = f.svc.Get(ctx, 999)
	var nf *model.NotFoundError
	assert.True(t, errors.As(err, &nf))
}

func TestUpdateReplacesEverything(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	img := f.storeImage(t, "receipt")

	billID, err := f.svc.Create(ctx, BillInput{
		Description: "Old", AmountCents: 1000, DebitAccountID: 4300, CreditAccountID: 2950,
		Images: []string{img}, Tags: []string{"a"},
	}, f.admin)
	require.NoError(t, err)

	err = f.svc.Update(ctx, billID, BillInput{
		Description: "New", AmountCents: 2000, ClosedDate: "2024-04-01", ClosedType: model.ClosedReimbursed,
		ClosedUserID: f.admin.ID, Tags: []string{"b"},
	}, f.admin)
	require.NoError(t, err)

	d, err := f.svc.Get(ctx, billID)
	require.NoError(t, err)
	assert.Equal(t, "New", d.Description)
	assert.Empty(t, d.Entries)
	assert.Empty(t, d.Images)
	assert.Equal(t, []string{"b"}, d.Tags)
	assert.Equal(t, int64(2000), d.AmountCents, "without entries the submitted amount is kept")
	assert.False(t, d.IsOpen())
	assert.Equal(t, model.ClosedReimbursed, d.ClosedType)
	assert.Equal(t, "Anna Virtanen", d.ClosedUserName)

	entries, err := history.NewService(f.store).ForBill(ctx, billID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, history.OpUpdate, entries[1].Operation)
}

func TestUpdateErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	billID, err := f.svc.Create(ctx, BillInput{Description: "x"}, f.admin)
	require.NoError(t, err)

	err = f.svc.Update(ctx, 999, BillInput{}, f.admin)
	var nf *model.NotFoundError
	assert.True(t, errors.As(err, &nf), "unknown bill")

	validation := []struct {
		name  string
		in    BillInput
		field string
	}{
		{"closed type", BillInput{ClosedType: "paid"}, "closed_type"},
		{"paid date", BillInput{PaidDate: "1.2.2024"}, "paid_date"},
		{"negative amount", BillInput{AmountCents: -1}, "amount_cents"},
		{"image id", BillInput{Images: []string{"nope.png"}}, "images[0]"},
		{"tag", BillInput{Tags: []string{"no-dash"}}, "tags"},
		{"one account", BillInput{AmountCents: 100, DebitAccountID: 4300}, "credit_account_id"},
		{"unknown account", BillInput{AmountCents: 100, DebitAccountID: 4300, CreditAccountID: 9999}, "entries[0].account_id"},
	}
	for _, tt := range validation {
		t.Run(tt.name, func(t *testing.T) {
			err := f.svc.Update(ctx, billID, tt.in, f.admin)
			var verr *model.ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tt.field, verr.Field)
		})
	}

	missing := strings.Repeat("a", 40) + ".png"
	err = f.svc.Update(ctx, billID, BillInput{Images: []string{missing}}, f.admin)
	assert.True(t, errors.As(err, &nf), "image not stored")

	// Failed updates leave the bill untouched.
	d, err := f.svc.Get(ctx, billID)
	require.NoError(t, err)
	assert.Equal(t, "x", d.Description)
	entries, err := history.NewService(f.store).ForBill(ctx, billID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestNonAdminRestrictions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	own, err := f.svc.Create(ctx, BillInput{Description: "Mine", AmountCents: 500}, f.member)
	require.NoError(t, err)
	d, err := f.svc.Get(ctx, own)
	require.NoError(t, err)
	assert.Equal(t, f.member.ID, d.PaidUserID, "payer defaults to the acting user")

	// An admin books the accounts; the member may still edit the amount.
	require.NoError(t, f.svc.Update(ctx, own, BillInput{
		Description: "Mine", PaidUserID: f.member.ID, AmountCents: 500, DebitAccountID: 4300, CreditAccountID: 2950,
	}, f.admin))
	require.NoError(t, f.svc.Update(ctx, own, BillInput{Description: "Mine, fixed", AmountCents: 700}, f.member))
	d, err = f.svc.Get(ctx, own)
	require.NoError(t, err)
	assert.Equal(t, 4300, d.DebitAccountID, "accounts survive a member edit")
	assert.Equal(t, int64(700), d.AmountCents)

	others, err := f.svc.Create(ctx, BillInput{Description: "Admin's"}, f.admin)
	require.NoError(t, err)

	denied := []struct {
		name   string
		billID int
		in     BillInput
	}{
		{"other user's bill", others, BillInput{}},
		{"pay for others", own, BillInput{PaidUserID: f.admin.ID}},
		{"set accounts", own, BillInput{DebitAccountID: 4300, CreditAccountID: 2950}},
		{"close", own, BillInput{ClosedDate: "2024-01-01", ClosedType: model.ClosedDenied}},
	}
	for _, tt := range denied {
		t.Run(tt.name, func(t *testing.T) {
			err := f.svc.Update(ctx, tt.billID, tt.in, f.member)
			var perr *model.PermissionError
			assert.True(t, errors.As(err, &perr), "got %v", err)
		})
	}

	require.NoError(t, f.svc.Update(ctx, own, BillInput{Description: "Mine", ClosedDate: "2024-05-01", ClosedType: model.ClosedDenied}, f.admin))
	err = f.svc.Update(ctx, own, BillInput{Description: "reopen?"}, f.member)
	var perr *model.PermissionError
	assert.True(t, errors.As(err, &perr), "closed bills are read-only for members")
}

func TestList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	img := f.storeImage(t, "receipt")

	_, err := f.svc.Create(ctx, BillInput{
		Description: "  Hotel\tnight  \nsecond line", AmountCents: 9900, DebitAccountID: 4300, CreditAccountID: 2950,
		PaidUserID: f.member.ID, Tags: []string{"trip"}, Images: []string{img},
	}, f.admin)
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, BillInput{Description: "Membership fee", AmountCents: 2000, Tags: []string{"fees"}}, f.admin)
	require.NoError(t, err)

	bills, tags, err := f.svc.List(ctx, f.admin)
	require.NoError(t, err)
	require.Len(t, bills, 2)
	assert.Equal(t, []string{"fees", "trip"}, tags)
	assert.Equal(t, "Hotel night", bills[0].Description)
	assert.Equal(t, int64(9900), bills[0].AmountCents)
	assert.Equal(t, "Pekka Mäkinen", bills[0].PaidUserName)
	assert.False(t, bills[0].ImageMissing)
	assert.True(t, bills[1].ImageMissing)
	assert.Equal(t, int64(2000), bills[1].AmountCents)

	bills, tags, err = f.svc.List(ctx, f.member)
	require.NoError(t, err)
	require.Len(t, bills, 1)
	assert.Equal(t, []string{"trip"}, tags)
}

func TestForCompare(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	billID, err := f.svc.Create(ctx, BillInput{Description: "Bus", PaidDate: "2024-01-05", AmountCents: 320}, f.admin)
	require.NoError(t, err)

	got, err := f.svc.ForCompare(ctx, f.admin)
	require.NoError(t, err)
	assert.Equal(t, []CompareBill{{BillID: billID, Date: "2024-01-05", Cents: 320, Description: "Bus"}}, got)

	_, err = f.svc.ForCompare(ctx, f.member)
	var perr *model.PermissionError
	assert.True(t, errors.As(err, &perr))
}

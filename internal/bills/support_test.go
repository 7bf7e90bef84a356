package bills

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/massikone/massikone/internal/model"
)

func TestNormalizeTags(t *testing.T) {
	got, err := NormalizeTags([]string{"b a", " a ", "C1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"C1", "a", "b"}, got)

	got, err = NormalizeTags(nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	for _, bad := range []string{"ä", "a-b", "a,b"} {
		_, err := NormalizeTags([]string{bad})
		var verr *model.ValidationError
		assert.True(t, errors.As(err, &verr), "tag %q", bad)
	}
}

func TestAvailableTags(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.PutAvailableTags(ctx, []string{"travel", "fees"}))
	require.NoError(t, f.svc.PutAvailableTags(ctx, []string{"office travel"}))
	got, err := f.svc.AvailableTags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"office", "travel"}, got)

	// Bills keep tags outside the available list.
	_, err = f.svc.Create(ctx, BillInput{Tags: []string{"legacy"}}, f.admin)
	require.NoError(t, err)
}

func TestFullAndShortName(t *testing.T) {
	tests := []struct {
		input, full, short string
	}{
		{"anna virtanen", "Anna Virtanen", "Anna V"},
		{"  PEKKA   mäkinen ", "Pekka Mäkinen", "Pekka M"},
		{"Cher", "Cher", "Cher"},
		{"jaana ärrä", "Jaana Ärrä", "Jaana Ä"},
		{"", "", ""},
	}
	for _, tt := range tests {
		full, short := FullAndShortName(tt.input)
		assert.Equal(t, tt.full, full, "input %q", tt.input)
		assert.Equal(t, tt.short, short, "input %q", tt.input)
	}
}

func TestShorten(t *testing.T) {
	assert.Equal(t, "Hotel night", Shorten("  Hotel \t night\nmore"))
	long := "Lorem ipsum dolor sit amet consectetur adipiscing elit sed do"
	assert.Equal(t, long[:50], Shorten(long))
	assert.Equal(t, "", Shorten(""))
}

func TestImages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

	imageID, err := f.svc.StoreImage(ctx, png, "")
	require.NoError(t, err)
	assert.True(t, len(imageID) > 40 && imageID[41:] == "png")
	again, err := f.svc.StoreImage(ctx, png, "")
	require.NoError(t, err)
	assert.Equal(t, imageID, again)

	data, err := f.svc.ImageData(ctx, imageID)
	require.NoError(t, err)
	assert.Equal(t, png, data)

	_, err = f.svc.StoreImage(ctx, []byte("not an image"), "")
	var verr *model.ValidationError
	assert.True(t, errors.As(err, &verr))
	_, err = f.svc.ImageData(ctx, "../secret")
	assert.True(t, errors.As(err, &verr))
	_, err = f.svc.ImageData(ctx, "0000000000000000000000000000000000000000.png")
	var nf *model.NotFoundError
	assert.True(t, errors.As(err, &nf))

	withImage, err := f.svc.Create(ctx, BillInput{Description: "Receipt", Images: []string{imageID}}, f.admin)
	require.NoError(t, err)
	without, err := f.svc.Create(ctx, BillInput{Description: "Lost"}, f.admin)
	require.NoError(t, err)

	images, missing, err := f.svc.BillsForImages(ctx)
	require.NoError(t, err)
	assert.Equal(t, []BillImage{{BillID: withImage, BillImageNum: 1, ImageID: imageID, Description: "Receipt"}}, images)
	assert.Equal(t, []int{without}, missing)
}

func TestUsers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	assert.True(t, f.admin.IsAdmin, "first user is admin")
	assert.False(t, f.member.IsAdmin)
	assert.Equal(t, "Anna Virtanen", f.admin.FullName)
	assert.Equal(t, "Pekka M", f.member.ShortName)

	got, err := f.svc.GetUser(ctx, f.member.ID)
	require.NoError(t, err)
	assert.Equal(t, f.member, got)
	got, err = f.svc.UserByEmail(ctx, " anna@example.com")
	require.NoError(t, err)
	assert.Equal(t, f.admin.ID, got.ID)

	_, err = f.svc.AddUser(ctx, UserInput{Email: "anna@example.com", FullName: "Another Anna"})
	var verr *model.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "email", verr.Field)
	_, err = f.svc.AddUser(ctx, UserInput{Email: "not-an-email", FullName: "X"})
	assert.True(t, errors.As(err, &verr))
	_, err = f.svc.AddUser(ctx, UserInput{Email: "x@example.com", FullName: "  "})
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "full_name", verr.Field)

	_, err = f.svc.GetUser(ctx, 999)
	var nf *model.NotFoundError
	assert.True(t, errors.As(err, &nf))

	users, err := f.svc.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "Anna Virtanen", users[0].FullName)
	assert.Equal(t, "Pekka Mäkinen", users[1].FullName)
}

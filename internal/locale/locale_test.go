package locale

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"12,34", 1234, false},
		{"100", 10000, false},
		{" 1 200,05 ", 120005, false},
		{"0,07", 7, false},
		{"", 0, false},
		{"12.34", 0, true},
		{"12,3", 0, true},
		{"-5", 0, true},
		{"abc", 0, true},
		{"92233720368547758,07", 9223372036854775807, false},
		{"92233720368547758,08", 0, true},
		{"999999999999999999999,99", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseAmount(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "ParseAmount(%q)", tt.in)
			continue
		}
		require.NoError(t, err, "ParseAmount(%q)", tt.in)
		assert.Equal(t, tt.want, got, "ParseAmount(%q)", tt.in)
	}
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "100,00", FormatCents(10000))
	assert.Equal(t, "0,05", FormatCents(5))
	assert.Equal(t, "", FormatCents(0))
	assert.Equal(t, "", FormatCents(-100))

	assert.Equal(t, "0,00", FormatCentsSigned(0))
	assert.Equal(t, "-12,34", FormatCentsSigned(-1234))
	assert.Equal(t, "-0,50", FormatCentsSigned(-50))
	assert.Equal(t, "1234567,89", FormatCentsSigned(123456789))
}

func TestDates(t *testing.T) {
	iso, err := ISOFromFi("5.3.2024")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-05", iso)

	_, err = ISOFromFi("2024-03-05")
	assert.Error(t, err)

	assert.Equal(t, "5.3.2024", FiFromISO("2024-03-05"))
	assert.Equal(t, "", FiFromISO("garbage"))
	assert.Equal(t, "", FiFromISO(""))

	for _, in := range []string{"2024-03-05", "5.3.2024", "05.03.2024"} {
		got, err := ParseDate(in)
		require.NoError(t, err, in)
		assert.Equal(t, "2024-03-05", got, in)
	}
}

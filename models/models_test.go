package models_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library_circulation/models"
)

func Test_NormalizeKey(t *testing.T) {
	testCases := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{raw: "0385504209", want: "0385504209"},
		{raw: "385504209", want: "0385504209"},
		{raw: "0-385-50420-9", want: "0385504209"},
		{raw: " 0 385 50420 9 ", want: "0385504209"},
		{raw: "1", want: "0000000001"},
		{raw: "080442957X", want: "080442957X"},
		{raw: "", wantErr: true},
		{raw: " - ", wantErr: true},
		{raw: "12345678901", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.raw, func(t *testing.T) {
			got, err := models.NormalizeKey(tc.raw)
			if tc.wantErr {
				assert.ErrorIs(t, err, models.ErrInvalidKey)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func Test_CardIDs(t *testing.T) {
	assert.Equal(t, "ID000001", models.FormatCardID(1))
	assert.Equal(t, "ID123456", models.FormatCardID(123456))

	n, ok := models.ParseCardID("ID000042")
	assert.True(t, ok)
	assert.Equal(t, int64(42), n)

	_, ok = models.ParseCardID("XX000042")
	assert.False(t, ok)
	_, ok = models.ParseCardID("IDabc")
	assert.False(t, ok)
}

func Test_Dates(t *testing.T) {
	late := time.Date(2026, 3, 10, 23, 59, 0, 0, time.UTC)

	assert.Equal(t, "2026-03-10", models.Date(late))
	assert.Equal(t, "2026-03-24", models.DueFrom(late))
	assert.True(t, models.ValidDate("2026-02-28"))
	assert.False(t, models.ValidDate("2026-02-30"))
	assert.False(t, models.ValidDate("10/03/2026"))

	days, err := models.DaysBetween("2026-02-20", "2026-03-02")
	require.NoError(t, err)
	assert.Equal(t, 10, days)

	days, err = models.DaysBetween("2026-03-29", "2026-03-28")
	require.NoError(t, err)
	assert.Equal(t, -1, days)

	_, err = models.DaysBetween("nope", "2026-03-28")
	assert.Error(t, err)
}

func Test_FineFor(t *testing.T) {
	assert.True(t, models.FineFor(0).IsZero())
	assert.True(t, models.FineFor(-3).IsZero())
	assert.Equal(t, "0.25", models.FineFor(1).StringFixed(2))
	assert.Equal(t, "2.50", models.FineFor(10).StringFixed(2))
	assert.Equal(t, "91.25", models.FineFor(365).StringFixed(2))
}

func Test_LoanActive(t *testing.T) {
	d := "2026-03-10"
	assert.True(t, models.Loan{}.Active())
	assert.False(t, models.Loan{ReturnDate: &d}.Active())
}

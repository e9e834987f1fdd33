package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindow(t *testing.T) {
	w := NewWindow(3, 20)
	assert.Equal(t, uint64(40), w.Offset())
	assert.Equal(t, uint64(20), w.Limit())

	w = NewWindow(0, 500)
	assert.Equal(t, Window{Page: 1, Size: DefaultPageSize}, w)
	assert.Equal(t, uint64(0), w.Offset())
}

func TestWindow_Info(t *testing.T) {
	info := NewWindow(2, 10).Info(45)
	assert.Equal(t, 5, info.TotalPages)
	assert.Equal(t, 2, info.CurrentPage)
	assert.Equal(t, int64(45), info.TotalItems)

	assert.Equal(t, 1, NewWindow(1, 10).Info(0).TotalPages)
	assert.Equal(t, 4, NewWindow(4, 10).Info(40).TotalPages)

	past := NewWindow(9, 10).Info(5)
	assert.Equal(t, 9, past.CurrentPage)
	assert.Equal(t, 1, past.TotalPages)
}

func TestContainsPattern(t *testing.T) {
	assert.Equal(t, "%lab%", ContainsPattern(" lab "))
	assert.Equal(t, `%50\% off\_x%`, ContainsPattern("50% off_x"))
}

func TestNullHelpers(t *testing.T) {
	assert.Nil(t, NullIfEmpty("  "))
	assert.Equal(t, "x", *NullIfEmpty("x"))
	assert.Nil(t, NullIfZero(0))
	assert.Equal(t, int64(4), *NullIfZero(4))
}

func TestDates(t *testing.T) {
	d, err := ParseDate("2026-03-15")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseDate("15/03/2026")
	assert.Error(t, err)

	now := time.Date(2026, 5, 1, 17, 45, 0, 0, time.UTC)
	d, err = ParseDateOr("", now)
	require.NoError(t, err)
	assert.Equal(t, "2026-05-01", FormatDate(d))
}

func TestFormatMinorUnits(t *testing.T) {
	assert.Equal(t, "12,345.67", FormatMinorUnits(1234567))
	assert.Equal(t, "0.05", FormatMinorUnits(5))
	assert.Equal(t, "1,000,000.00", FormatMinorUnits(100000000))
	assert.Equal(t, "-999.10", FormatMinorUnits(-99910))
}

package datefmt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
		ok    bool
	}{
		{"2024-01-15", date(2024, 1, 15), true},
		{"2024/1/5", date(2024, 1, 5), true},
		{"2024.12.31", date(2024, 12, 31), true},
		{"2024-01-15 10:22:01", date(2024, 1, 15), true},
		{"25/03/2024", date(2024, 3, 25), true},
		{"05/03/2024", date(2024, 3, 5), true},
		{"03/25/2024", date(2024, 3, 25), true},
		{"12-31-2024", date(2024, 12, 31), true},
		{"5.3.24", date(2024, 3, 5), true},
		{"31/12/99", date(2099, 12, 31), true},
		{" 25/03/2024 ", date(2024, 3, 25), true},
		{"31/04/2024", time.Time{}, false},
		{"2024-13-01", time.Time{}, false},
		{"13/13/2024", time.Time{}, false},
		{"Jan 5 2024", time.Time{}, false},
		{"20240115", time.Time{}, false},
		{"", time.Time{}, false},
		{"Date", time.Time{}, false},
	}
	for _, tt := range tests {
		got, ok := Parse(tt.input)
		assert.Equal(t, tt.ok, ok, "Parse(%q) ok", tt.input)
		if tt.ok {
			assert.Equal(t, tt.want, got, "Parse(%q)", tt.input)
		}
	}
}

func TestParseWithOrder(t *testing.T) {
	_, order, ok := ParseWithOrder("25/03/2024")
	assert.True(t, ok)
	assert.Equal(t, OrderDMY, order)

	_, order, ok = ParseWithOrder("03/25/2024")
	assert.True(t, ok)
	assert.Equal(t, OrderMDY, order)

	_, order, ok = ParseWithOrder("05/03/2024")
	assert.True(t, ok)
	assert.Equal(t, OrderDMY, order)

	_, order, ok = ParseWithOrder("2024-03-05")
	assert.True(t, ok)
	assert.Equal(t, OrderISO, order)
}

func TestLooksLikeDate(t *testing.T) {
	assert.True(t, LooksLikeDate("2024-01-15"))
	assert.True(t, LooksLikeDate("15/01/2024"))
	assert.True(t, LooksLikeDate("01/15/24"))
	assert.False(t, LooksLikeDate("45.50"))
	assert.False(t, LooksLikeDate("Grocery Store"))
	assert.False(t, LooksLikeDate(""))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "2024-03-05", Format(date(2024, 3, 5)))
}

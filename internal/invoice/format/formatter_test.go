package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCents(t *testing.T) {
	cases := map[int64]string{
		0:         "$0.00",
		5:         "$0.05",
		3500:      "$35.00",
		10000:     "$100.00",
		123456:    "$1,234.56",
		100000000: "$1,000,000.00",
		-2550:     "-$25.50",
	}
	for in, want := range cases {
		assert.Equal(t, want, Cents(in), "cents %d", in)
	}
}

func TestDollars(t *testing.T) {
	assert.Equal(t, "$35.00", Dollars(35))
	assert.Equal(t, "$0.30", Dollars(0.1+0.2))
	assert.Equal(t, "$1,250.99", Dollars(1250.99))
}

func TestDate(t *testing.T) {
	assert.Equal(t, "-", Date(nil))
	ts := time.Date(2026, 6, 14, 18, 0, 0, 0, time.UTC)
	assert.Equal(t, "June 14, 2026", Date(&ts))
}

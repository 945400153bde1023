package format

import (
	"strconv"
	"strings"
	"time"
)

// Cents renders minor units as US dollars, e.g. 123456 -> "$1,234.56".
func Cents(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	whole := strconv.FormatInt(amount/100, 10)
	frac := amount % 100

	var b strings.Builder
	b.WriteString(sign)
	b.WriteByte('$')
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteByte('.')
	if frac < 10 {
		b.WriteByte('0')
	}
	b.WriteString(strconv.FormatInt(frac, 10))
	return b.String()
}

// Dollars renders a dollar amount stored as numeric(10,2).
func Dollars(amount float64) string {
	if amount < 0 {
		return "-" + Cents(int64(-amount*100+0.5))
	}
	return Cents(int64(amount*100 + 0.5))
}

func Date(value *time.Time) string {
	if value == nil || value.IsZero() {
		return "-"
	}
	return value.UTC().Format("January 2, 2006")
}

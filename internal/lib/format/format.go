package format

import (
	"fmt"
	"strconv"
)

// Seri renders a seri number the way the dashboards show it, zero padded to
// four digits.
func Seri(seri int64) string {
	return fmt.Sprintf("%04d", seri)
}

// Countdown renders remaining seconds as mm:ss.
func Countdown(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}

	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// Amount renders a balance or wager amount with thousands separators.
func Amount(amount int) string {
	s := strconv.Itoa(amount)

	neg := false
	if len(s) > 0 && s[0] == '-' {
		neg = true
		s = s[1:]
	}

	out := make([]byte, 0, len(s)+len(s)/3)
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, '.')
		}
		out = append(out, c)
	}

	if neg {
		return "-" + string(out)
	}

	return string(out)
}

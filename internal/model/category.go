package model

import "strconv"

// BetCategory is the wager classification resolved against the round result.
// Closed set: besar, kecil, genap, ganjil and the exact digits "0".."9".
type BetCategory string

const (
	Besar  BetCategory = "besar"
	Kecil  BetCategory = "kecil"
	Genap  BetCategory = "genap"
	Ganjil BetCategory = "ganjil"
)

// ExactCategory returns the exact-digit category for d. Caller must make
// sure d is a single digit.
func ExactCategory(d int) BetCategory {
	return BetCategory(strconv.Itoa(d))
}

// ExactDigit reports the digit of an exact-digit category.
func (c BetCategory) ExactDigit() (int, bool) {
	if len(c) != 1 {
		return 0, false
	}

	d, err := strconv.Atoi(string(c))
	if err != nil || d < 0 || d > 9 {
		return 0, false
	}

	return d, true
}

func (c BetCategory) Valid() bool {
	switch c {
	case Besar, Kecil, Genap, Ganjil:
		return true
	}

	_, ok := c.ExactDigit()

	return ok
}

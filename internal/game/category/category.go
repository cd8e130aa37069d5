package category

import (
	"github.com/putridahliana91-coder/senoplan/internal/model"
)

// Multiplier is the flat payout applied to every winning category, exact
// digits included. Changing it changes the game economics.
const Multiplier = 2

// Resolve reports whether a category wins against a result digit. Categories
// are not mutually exclusive; each wager resolves independently.
func Resolve(c model.BetCategory, result int) bool {
	switch c {
	case model.Besar:
		return result >= 5
	case model.Kecil:
		return result < 5
	case model.Genap:
		return result%2 == 0
	case model.Ganjil:
		return result%2 == 1
	}

	if d, ok := c.ExactDigit(); ok {
		return result == d
	}

	return false
}

// Tags classifies a result digit for the result announcement, e.g. 7 ->
// ["BESAR", "GANJIL"].
func Tags(result int) []string {
	tags := make([]string, 0, 2)

	if result >= 5 {
		tags = append(tags, "BESAR")
	} else {
		tags = append(tags, "KECIL")
	}

	if result%2 == 0 {
		tags = append(tags, "GENAP")
	} else {
		tags = append(tags, "GANJIL")
	}

	return tags
}

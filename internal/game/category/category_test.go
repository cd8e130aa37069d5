package category

import (
	"strconv"
	"testing"

	"github.com/putridahliana91-coder/senoplan/internal/model"
)

func TestResolveNamedCategories(t *testing.T) {
	t.Parallel()

	for d := 0; d <= 9; d++ {
		if got, want := Resolve(model.Besar, d), d >= 5; got != want {
			t.Errorf("besar vs %d: want %v, got %v", d, want, got)
		}
		if got, want := Resolve(model.Kecil, d), d < 5; got != want {
			t.Errorf("kecil vs %d: want %v, got %v", d, want, got)
		}
		if got, want := Resolve(model.Genap, d), d%2 == 0; got != want {
			t.Errorf("genap vs %d: want %v, got %v", d, want, got)
		}
		if got, want := Resolve(model.Ganjil, d), d%2 == 1; got != want {
			t.Errorf("ganjil vs %d: want %v, got %v", d, want, got)
		}
	}
}

func TestResolveExactDigits(t *testing.T) {
	t.Parallel()

	for d := 0; d <= 9; d++ {
		for result := 0; result <= 9; result++ {
			cat := model.ExactCategory(d)

			if got, want := Resolve(cat, result), d == result; got != want {
				t.Errorf("exact %d vs %d: want %v, got %v", d, result, want, got)
			}
		}
	}
}

func TestResolveUnknownCategory(t *testing.T) {
	t.Parallel()

	if Resolve(model.BetCategory("merah"), 5) {
		t.Error("unknown category must never win")
	}
	if Resolve(model.BetCategory("10"), 1) {
		t.Error("out-of-range digit category must never win")
	}
}

func TestTags(t *testing.T) {
	cases := []struct {
		result int
		want   [2]string
	}{
		{result: 7, want: [2]string{"BESAR", "GANJIL"}},
		{result: 4, want: [2]string{"KECIL", "GENAP"}},
		{result: 0, want: [2]string{"KECIL", "GENAP"}},
		{result: 9, want: [2]string{"BESAR", "GANJIL"}},
		{result: 6, want: [2]string{"BESAR", "GENAP"}},
	}

	for _, tc := range cases {
		tc := tc

		t.Run(strconv.Itoa(tc.result), func(t *testing.T) {
			t.Parallel()

			got := Tags(tc.result)
			if len(got) != 2 || got[0] != tc.want[0] || got[1] != tc.want[1] {
				t.Errorf("unexpected tags for %d, want: %v, got: %v", tc.result, tc.want, got)
			}
		})
	}
}

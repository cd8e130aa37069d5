package format

import "testing"

func TestSeri(t *testing.T) {
	cases := []struct {
		name string
		seri int64
		want string
	}{
		{
			name: "Padded",
			seri: 42,
			want: "0042",
		},
		{
			name: "FourDigits",
			seri: 9999,
			want: "9999",
		},
		{
			name: "One",
			seri: 1,
			want: "0001",
		},
	}

	for _, tc := range cases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := Seri(tc.seri)
			if got != tc.want {
				t.Errorf("unexpected result, want: %s, got: %s", tc.want, got)
			}
		})
	}
}

func TestCountdown(t *testing.T) {
	cases := []struct {
		name    string
		seconds int
		want    string
	}{
		{
			name:    "FullRound",
			seconds: 60,
			want:    "01:00",
		},
		{
			name:    "Seconds",
			seconds: 7,
			want:    "00:07",
		},
		{
			name:    "Negative",
			seconds: -3,
			want:    "00:00",
		},
	}

	for _, tc := range cases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := Countdown(tc.seconds)
			if got != tc.want {
				t.Errorf("unexpected result, want: %s, got: %s", tc.want, got)
			}
		})
	}
}

func TestAmount(t *testing.T) {
	cases := []struct {
		name   string
		amount int
		want   string
	}{
		{
			name:   "Thousands",
			amount: 1500000,
			want:   "1.500.000",
		},
		{
			name:   "Small",
			amount: 500,
			want:   "500",
		},
		{
			name:   "Zero",
			amount: 0,
			want:   "0",
		},
		{
			name:   "Negative",
			amount: -2500,
			want:   "-2.500",
		},
	}

	for _, tc := range cases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := Amount(tc.amount)
			if got != tc.want {
				t.Errorf("unexpected result, want: %s, got: %s", tc.want, got)
			}
		})
	}
}

package eclipse

import "testing"

func TestFormatTarget(t *testing.T) {
	cases := map[float64]string{
		3000:     "3,000",
		45000000: "45,000,000",
		6:        "6",
		100:      "100",
		2500000:  "2,500,000",
		0:        "0",
		1234.5:   "1,234.5",
	}
	for input, want := range cases {
		if got := FormatTarget(input); got != want {
			t.Fatalf("FormatTarget(%v) = %q, want %q", input, got, want)
		}
	}
}

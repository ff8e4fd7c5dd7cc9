package core

import "testing"

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{"1.004", 100, true},
		{" 2.50 ", 250, true},
		{"$30.00", 3000, true},
		{".5", 50, true},
		{"-1", 0, false},
		{"+1", 0, false},
		{"0", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"12a", 0, false},
		{"", 0, false},
		{"$", 0, false},
		{"99999999999999999999", 0, false},
		{"1000000000", MaxAmountCents, true},
		{"1000000000.004", MaxAmountCents, true},
		{"1000000000.01", 0, false},
		{"1000000000.005", 0, false},
		{"92233720368547757", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestMoneyString(t *testing.T) {
	cases := map[int64]string{
		0:      "0.00",
		1:      "0.01",
		3000:   "30.00",
		11000:  "110.00",
		-550:   "-5.50",
		123456: "1234.56",
	}
	for cents, want := range cases {
		if got := (Money{Cents: cents}).String(); got != want {
			t.Errorf("Money{%d}.String() = %q, want %q", cents, got, want)
		}
	}
}

func TestParseMoney(t *testing.T) {
	m, err := ParseMoney("100")
	if err != nil || m.Cents != 10000 {
		t.Fatalf("unexpected: %v %v", m, err)
	}
	if _, err := ParseMoney("ten"); err != ErrInvalidAmount {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

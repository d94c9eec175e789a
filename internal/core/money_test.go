package core

import "testing"

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"12000", 12000, true},
		{"12,000", 12000, true},
		{" 9900원 ", 9900, true},
		{"0", 0, true},
		{"1538.46", 1538, true}, // rounds down
		{"1538.5", 1539, true},  // rounds up
		{"-100", 0, false},
		{"+100", 0, false},
		{"1.2.3", 0, false},
		{"abc", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got.Amount != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got.Amount, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestMoneyDivRoundsHalfUp(t *testing.T) {
	cases := []struct {
		amount, div, want int64
	}{
		{20000, 13, 1538}, // 1538.46 down
		{20000, 3, 6667},  // 6666.67 up
		{10000, 4, 2500},  // exact
		{3, 2, 2},         // 1.5 -> 2
		{1, 2, 1},         // 0.5 -> 1
		{-3, 2, -2},       // half away from zero
		{5, 0, 0},         // guarded by callers, must not panic
	}
	for _, tc := range cases {
		if got := Won(tc.amount).Div(tc.div).Amount; got != tc.want {
			t.Errorf("%d / %d = %d, want %d", tc.amount, tc.div, got, tc.want)
		}
	}
}

func TestMoneyFormat(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{12000, "12,000"},
		{1234567, "1,234,567"},
		{-9900, "-9,900"},
	}
	for _, tc := range cases {
		if got := Won(tc.in).Format(); got != tc.want {
			t.Errorf("Format(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

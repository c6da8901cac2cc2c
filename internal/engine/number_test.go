package engine

import "testing"

func TestNumber_Decimal(t *testing.T) {
	tests := []struct {
		lit    string
		neg    bool
		digits string
		exp    int
	}{
		{"0", false, "", 0},
		{"-0", false, "", 0},
		{"0.000", false, "", 0},
		{"1", false, "1", 0},
		{"1.0", false, "1", 0},
		{"1e2", false, "1", 2},
		{"0.5e1", false, "5", 0},
		{"1200", false, "12", 2},
		{"0.00120", false, "12", -4},
		{"-12.34E+1", true, "1234", -1},
		{"123456789012345678901234567890", false, "12345678901234567890123456789", 1},
	}
	for _, tt := range tests {
		d := NumberFromLiteral(tt.lit).Decimal()
		if tt.digits == "" {
			if d.Digits != "" {
				t.Fatalf("%s: expected zero, got %+v", tt.lit, d)
			}
			continue
		}
		if d.Neg != tt.neg || d.Digits != tt.digits || d.Exp != tt.exp {
			t.Fatalf("%s: got %+v, want {%v %s %d}", tt.lit, d, tt.neg, tt.digits, tt.exp)
		}
	}
}

func TestNumber_IntegerPredicates(t *testing.T) {
	tests := []struct {
		lit      string
		integer  bool
		integral bool
	}{
		{"1", true, true},
		{"1.0", false, true},
		{"1e2", false, true},
		{"1.5", false, false},
		{"15e-1", false, false},
		{"-0", true, true},
	}
	for _, tt := range tests {
		n := NumberFromLiteral(tt.lit)
		if n.IsInteger() != tt.integer || n.IsIntegral() != tt.integral {
			t.Fatalf("%s: IsInteger=%v IsIntegral=%v", tt.lit, n.IsInteger(), n.IsIntegral())
		}
	}
}

func TestNumber_Int64(t *testing.T) {
	tests := []struct {
		lit  string
		want int64
		ok   bool
	}{
		{"42", 42, true},
		{"-42", -42, true},
		{"1e2", 100, true},
		{"2.50e1", 25, true},
		{"9223372036854775807", 9223372036854775807, true},
		{"-9223372036854775808", -9223372036854775808, true},
		{"9223372036854775808", 0, false},
		{"1.5", 0, false},
		{"1e30", 0, false},
	}
	for _, tt := range tests {
		got, ok := NumberFromLiteral(tt.lit).Int64()
		if ok != tt.ok || got != tt.want {
			t.Fatalf("%s: got (%d,%v), want (%d,%v)", tt.lit, got, ok, tt.want, tt.ok)
		}
	}
}

func TestNumber_UnderflowAccepted(t *testing.T) {
	v := mustParse(t, `1e-400`)
	if v.Num.Float64() != 0 {
		t.Fatalf("expected underflow to zero, got %v", v.Num.Float64())
	}
}

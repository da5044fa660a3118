package tfc_test

import (
	"testing"

	"github.com/brightkite/tfc-engine/tfc"
)

func TestParseMoney(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "400", want: "400.00"},
		{in: "33.33", want: "33.33"},
		{in: "0", want: "0.00"},
		{in: "-12.50", want: "-12.50"}, // sign handled by callers, not the parser
		{in: "", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "NaN", wantErr: true},
		{in: "12.3.4", wantErr: true},
	}

	for _, tc := range cases {
		m, err := tfc.ParseMoney(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseMoney(%q): expected error, got %s", tc.in, m)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseMoney(%q): unexpected error %v", tc.in, err)
			continue
		}
		if m.String() != tc.want {
			t.Errorf("ParseMoney(%q) = %s, want %s", tc.in, m, tc.want)
		}
	}
}

func TestMoney_Round2_HalfUp(t *testing.T) {
	cases := map[string]string{
		"6.664":  "6.66",
		"6.665":  "6.67",
		"6.666":  "6.67",
		"499.999": "500.00",
	}
	for in, want := range cases {
		m, err := tfc.ParseMoney(in)
		if err != nil {
			t.Fatalf("ParseMoney(%q): %v", in, err)
		}
		if got := m.Round2().String(); got != want {
			t.Errorf("Round2(%s) = %s, want %s", in, got, want)
		}
	}
}

func TestMoney_MinMax(t *testing.T) {
	a, b := tfc.NewMoney(40), tfc.NewMoney(600)
	if got := a.Min(b); !got.Equal(a) {
		t.Errorf("Min = %s, want %s", got, a)
	}
	if got := a.Max(b); !got.Equal(b) {
		t.Errorf("Max = %s, want %s", got, b)
	}
}

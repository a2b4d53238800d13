package cpf

import "testing"

func TestValid(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want bool
	}{
		{"valid bare", "11144477735", true},
		{"valid masked", "111.444.777-35", true},
		{"bad check digits", "12345678900", false},
		{"too short", "1114447773", false},
		{"too long", "111444777350", false},
		{"empty", "", false},
		{"letters", "aaa.bbb.ccc-dd", false},
		{"repeated digits", "11111111111", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Valid(tc.in); got != tc.want {
				t.Errorf("Valid(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestStrip(t *testing.T) {
	if got := Strip("111.444.777-35"); got != "11144477735" {
		t.Errorf("expected stripped cpf, got %q", got)
	}
}

func TestFormat(t *testing.T) {
	if got := Format("11144477735"); got != "111.444.777-35" {
		t.Errorf("unexpected format: %q", got)
	}
	if got := Format("123"); got != "123" {
		t.Errorf("short input should be returned unchanged, got %q", got)
	}
}

package symptom

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"Dor no PEITO!", "dor no peito"},
		{"falta de ar, tosse; febre.", "falta de ar tosse febre"},
		{"Inchaço nas pernas", "inchaço nas pernas"},
		{"dor-de-cabeça", "dordecabeça"},
		{"snake_case 42", "snake_case 42"},
		{"tab\tand\nnewline", "tab\tand\nnewline"},
		{"???", ""},
	}
	for _, tc := range tests {
		if got := Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"Dor no peito e FALTA de ar!!",
		"Ção, ÁGUA; 123 -- _x_",
		"émoji 🚑 text",
		"  spaced   out  ",
	}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q != %q", in, twice, once)
		}
	}
}

package ubigeo

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Mérida", "merida"},
		{"  ANZOÁTEGUI ", "anzoategui"},
		{"Peña", "pena"},
		{"Güiria", "guiria"},
		{"San   José\tde  Guanipa", "san jose de guanipa"},
		{"23 de Enero", "23 de enero"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

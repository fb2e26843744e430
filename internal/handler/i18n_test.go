package handler

import "testing"

func TestLocalizeFixedTitle(t *testing.T) {
	tests := []struct {
		name     string
		language string
		input    string
		want     string
	}{
		{
			name:     "es to en",
			language: "en",
			input:    "Iniciar sesión",
			want:     "Log in",
		},
		{
			name:     "en to es",
			language: "es",
			input:    "Hydration",
			want:     "Hidratación",
		},
		{
			name:     "unknown stays",
			language: "en",
			input:    "Mi título",
			want:     "Mi título",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := localizeFixedTitle(tc.language, tc.input)
			if got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

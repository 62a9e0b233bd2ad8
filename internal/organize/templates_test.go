package organize

import "testing"

func TestFormatFolder(t *testing.T) {
	tests := []struct {
		name     string
		template string
		tokens   Tokens
		want     string
	}{
		{
			name:     "title and year",
			template: "{title} ({year})",
			tokens:   Tokens{Title: "The Matrix", Year: 1999},
			want:     "The Matrix (1999)",
		},
		{
			name:     "missing year drops parens",
			template: "{title} ({year})",
			tokens:   Tokens{Title: "Primer"},
			want:     "Primer",
		},
		{
			name:     "colon replaced",
			template: "{title} ({year})",
			tokens:   Tokens{Title: "Blade Runner 2049: Director's Cut", Year: 2017},
			want:     "Blade Runner 2049 - Director's Cut (2017)",
		},
		{
			name:     "invalid characters stripped",
			template: "{title}",
			tokens:   Tokens{Title: `What? <If*/\>`},
			want:     "What If",
		},
		{
			name:     "studio token",
			template: "{studio}/{title} ({year})",
			tokens:   Tokens{Title: "Heat", Year: 1995, Studio: "Warner Bros."},
			want:     "Warner Bros.Heat (1995)",
		},
		{
			name:     "unknown token resolves empty",
			template: "{title} {bogus}",
			tokens:   Tokens{Title: "Heat"},
			want:     "Heat",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatFolder(tt.template, tt.tokens); got != tt.want {
				t.Errorf("FormatFolder() = %q, want %q", got, tt.want)
			}
		})
	}
}

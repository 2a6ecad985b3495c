package sanitizer

import "testing"

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "valid E.164 format",
			input: "+998901234567",
			want:  "+998901234567",
		},
		{
			name:  "with spaces",
			input: "+998 90 123 45 67",
			want:  "+998901234567",
		},
		{
			name:  "with dashes",
			input: "+998-90-123-45-67",
			want:  "+998901234567",
		},
		{
			name:  "with parentheses",
			input: "+998 (90) 123-45-67",
			want:  "+998901234567",
		},
		{
			name:  "national number",
			input: "90 123 45 67",
			want:  "+998901234567",
		},
		{
			name:  "leading and trailing spaces",
			input: "  +998901234567  ",
			want:  "+998901234567",
		},
		{
			name:  "foreign number keeps its country code",
			input: "+1 (212) 555-1234",
			want:  "+12125551234",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
		{
			name:  "only whitespace",
			input: "   ",
			want:  "",
		},
		{
			name:  "not a number",
			input: "call me",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizePhone(tt.input)
			if got != tt.want {
				t.Errorf("NormalizePhone(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizePhone_Idempotent(t *testing.T) {
	once := NormalizePhone("90 123 45 67")
	if twice := NormalizePhone(once); twice != once {
		t.Errorf("NormalizePhone is not idempotent: %q then %q", once, twice)
	}
}

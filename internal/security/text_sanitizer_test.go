package security

import "testing"

func TestSanitizeText_PlainTextPassesThrough(t *testing.T) {
	s := NewTextSanitizer()

	cases := []string{
		"Arjun",
		"Priya K",
		"user-042",
	}
	for _, in := range cases {
		if got := s.SanitizeText(in); got != in {
			t.Errorf("SanitizeText(%q) = %q, want %q", in, got, in)
		}
	}
}

func TestSanitizeText_StripsMarkup(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"scriptタグ", `<script>alert(1)</script>Arjun`, "Arjun"},
		{"imgのonerror", `<img src=x onerror=alert(1)>Priya`, "Priya"},
		{"装飾タグ", `<b>Ravi</b>`, "Ravi"},
		{"アンカー", `<a href="https://evil.example">Dev</a>`, "Dev"},
		{"空文字列", "", ""},
	}

	s := NewTextSanitizer()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := s.SanitizeText(tc.in); got != tc.want {
				t.Errorf("SanitizeText(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestSanitizeText_TrimsWhitespace(t *testing.T) {
	s := NewTextSanitizer()
	if got := s.SanitizeText("  Arjun  "); got != "Arjun" {
		t.Errorf("SanitizeText = %q, want %q", got, "Arjun")
	}
}

func TestSanitizeText_Idempotent(t *testing.T) {
	s := NewTextSanitizer()
	in := `<b>Ravi &amp; co</b>`
	once := s.SanitizeText(in)
	twice := s.SanitizeText(once)
	if once != twice {
		t.Errorf("冪等でない: 1回目 %q, 2回目 %q", once, twice)
	}
}

package i18n

import (
	"testing"

	"golang.org/x/text/language"
)

func loadCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := Load("en")
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	return c
}

func TestLoadSupportsEnglishArabicKurdish(t *testing.T) {
	c := loadCatalog(t)

	got := c.Supported()
	if len(got) != 3 {
		t.Fatalf("expected 3 languages, got %v", got)
	}
	if got[0] != language.English {
		t.Fatalf("expected default first, got %v", got[0])
	}
	if c.Default() != language.English {
		t.Fatalf("expected en default, got %v", c.Default())
	}
}

func TestLoadRejectsUnknownDefault(t *testing.T) {
	if _, err := Load("fr"); err == nil {
		t.Fatalf("expected error for language without translations")
	}
}

func TestTranslateKnownKey(t *testing.T) {
	c := loadCatalog(t)
	ar, ok := c.Lookup("ar")
	if !ok {
		t.Fatalf("expected ar to be supported")
	}

	got := c.Translate(ar, "Invalid login credentials", nil)
	if got != "بيانات تسجيل الدخول غير صالحة" {
		t.Fatalf("unexpected arabic text %q", got)
	}
}

func TestTranslateFallsBackToLiteral(t *testing.T) {
	c := loadCatalog(t)
	ku, _ := c.Lookup("ku")

	got := c.Translate(ku, "Some backend message nobody translated", nil)
	if got != "Some backend message nobody translated" {
		t.Fatalf("expected literal fallback, got %q", got)
	}
}

func TestTranslateFallsBackToDefaultLanguage(t *testing.T) {
	c := loadCatalog(t)
	ar, _ := c.Lookup("ar")

	got := c.Translate(ar, "Email verified successfully!", nil)
	if got != "Email verified successfully!" {
		t.Fatalf("expected english text, got %q", got)
	}
}

func TestTranslateInterpolates(t *testing.T) {
	c := loadCatalog(t)
	ar, _ := c.Lookup("ar")

	got := c.Translate(ar, "Step {{currentStep}} of 4", map[string]string{"currentStep": "2"})
	if got != "الخطوة 2 من 4" {
		t.Fatalf("unexpected interpolation %q", got)
	}

	msg := Error("Too many requests. You can request a new code in {{seconds}} seconds.").With("seconds", "42")
	if got := c.Render(language.English, msg); got != "Too many requests. You can request a new code in 42 seconds." {
		t.Fatalf("unexpected render %q", got)
	}
}

func TestRenderEmptyMessage(t *testing.T) {
	c := loadCatalog(t)
	if got := c.Render(language.English, Message{}); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}

func TestWithDoesNotMutateOriginal(t *testing.T) {
	base := Success("x").With("a", "1")
	next := base.With("b", "2")
	if _, ok := base.Params["b"]; ok {
		t.Fatalf("expected original params untouched")
	}
	if next.Params["a"] != "1" || next.Params["b"] != "2" {
		t.Fatalf("unexpected params %v", next.Params)
	}
}

func TestNegotiate(t *testing.T) {
	c := loadCatalog(t)

	tests := []struct {
		name      string
		preferred string
		accept    string
		want      string
	}{
		{name: "preferred wins", preferred: "ku", accept: "ar", want: "ku"},
		{name: "accept header", accept: "ar-IQ,ar;q=0.9,en;q=0.5", want: "ar"},
		{name: "unsupported preferred uses header", preferred: "fr", accept: "ar", want: "ar"},
		{name: "nothing matches", accept: "ja", want: "en"},
		{name: "garbage header", accept: ";;;", want: "en"},
		{name: "empty", want: "en"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Negotiate(tt.preferred, tt.accept)
			if got.String() != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestDirection(t *testing.T) {
	c := loadCatalog(t)
	if got := c.Direction(language.Arabic); got != "rtl" {
		t.Fatalf("expected rtl for arabic, got %s", got)
	}
	if got := c.Direction(language.English); got != "ltr" {
		t.Fatalf("expected ltr for english, got %s", got)
	}
}

package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"blank", " \t\n ", ""},
		{"lowercase", "How To Reset", "how to reset"},
		{"accents", "Café crème brûlée", "cafe creme brulee"},
		{"spanish", "¿Cómo cambio mi contraseña?", "como cambio mi contrasena"},
		{"punctuation", "refund-policy: 30 days!!", "refund policy 30 days"},
		{"collapse", "a   b\t\tc", "a b c"},
		{"underscore kept", "snake_case word", "snake_case word"},
		{"only symbols", "?!.,;", ""},
		{"digits", "Order #1234", "order 1234"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"", "Café", "  ÀÉÎÕÜ  ñ ç ", "İstanbul", "Straße", "Ångström",
		"mixed: CASE, punctuation... and   spaces", "日本語 テキスト", "naïve résumé",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestNormalizeCaseAndAccentInsensitive(t *testing.T) {
	assert.Equal(t, Normalize("cafe"), Normalize("Café"))
	assert.Equal(t, Normalize("CAFE"), Normalize("café"))
}

func TestTokens(t *testing.T) {
	assert.Nil(t, Tokens("  "))
	assert.Equal(t, []string{"reset", "my", "password"}, Tokens("Reset my password?"))
}

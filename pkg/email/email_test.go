package email

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValid(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"ada@example.com", true},
		{"ada.lovelace+vcc@mail.example.org", true},
		{"", false},
		{"ada@example", false},
		{"ada example@example.com", false},
		{"@example.com", false},
		{"ada@@example.com", false},
		{strings.Repeat("a", 250) + "@x.io", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValid(tt.in))
		})
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "ada@example.com", Normalize("  Ada@Example.COM "))
}

func TestDeriveNameFromEmail(t *testing.T) {
	assert.Equal(t, "Ada Lovelace", DeriveNameFromEmail("ada.lovelace@example.com"))
	assert.Equal(t, "Root", DeriveNameFromEmail("root@example.com"))
	assert.Equal(t, "Member", DeriveNameFromEmail("@example.com"))
}

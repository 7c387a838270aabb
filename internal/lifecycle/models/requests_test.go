package models

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "vcc/pkg/domain-errors"
)

func validRequest() *SubmitApplicationRequest {
	return &SubmitApplicationRequest{
		DisplayName:     "Ada Lovelace",
		SubmissionRole:  "Developer",
		Email:           "ada@example.com",
		Password:        "correct horse",
		ConfirmPassword: "correct horse",
	}
}

func TestValidate(t *testing.T) {
	t.Run("accepts a minimal anonymous submission", func(t *testing.T) {
		req := validRequest()
		req.Normalize()
		assert.NoError(t, req.Validate(true))
	})

	t.Run("accumulates every problem", func(t *testing.T) {
		req := &SubmitApplicationRequest{
			Email:           "not-an-email",
			Password:        "short",
			ConfirmPassword: "different",
			Website:         "ftp://example.com",
			GitHub:          "https://exa mple.com",
		}
		req.Normalize()
		err := req.Validate(true)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))

		var fields []string
		for _, fe := range dErrors.FieldErrors(err) {
			fields = append(fields, fe.Field)
		}
		assert.ElementsMatch(t, []string{"display_name", "role", "email", "password", "confirm_password", "website", "github"}, fields)
	})

	t.Run("credentials are optional with a session", func(t *testing.T) {
		req := &SubmitApplicationRequest{DisplayName: "Ada", SubmissionRole: "Developer"}
		assert.NoError(t, req.Validate(false))
	})

	t.Run("reference links are checked only for named references", func(t *testing.T) {
		req := validRequest()
		req.References = []ReferenceInput{
			{Name: "", Link: "nonsense"},
			{Name: "Grace", Link: "javascript:alert(1)"},
		}
		err := req.Validate(true)
		require.Error(t, err)
		require.Len(t, dErrors.FieldErrors(err), 1)
		assert.Equal(t, "references[1].link", dErrors.FieldErrors(err)[0].Field)
	})
}

func TestApplicationCaps(t *testing.T) {
	t.Run("reference with an empty name is dropped", func(t *testing.T) {
		req := validRequest()
		req.References = []ReferenceInput{
			{Name: "  ", Relationship: "ghost"},
			{Name: "Grace", Relationship: "mentor"},
		}
		req.Normalize()
		app := req.Application()
		require.Len(t, app.References, 1)
		assert.Equal(t, "Grace", app.References[0].Name)
	})

	t.Run("at most three references survive", func(t *testing.T) {
		req := validRequest()
		for i := range 5 {
			req.References = append(req.References, ReferenceInput{Name: fmt.Sprintf("ref-%d", i)})
		}
		assert.Len(t, req.Application().References, MaxReferences)
	})

	t.Run("CSV lists are split and truncated", func(t *testing.T) {
		items := make([]string, 40)
		for i := range items {
			items[i] = fmt.Sprintf(" skill-%d ", i)
		}
		items[3] = "  "
		items[5] = strings.Repeat("x", 150)

		req := validRequest()
		req.SkillsCSV = strings.Join(items, ",")
		req.TagsCSV = "go, , sql,"
		app := req.Application()

		assert.Len(t, app.Skills, MaxListItems)
		assert.Equal(t, "skill-0", app.Skills[0])
		assert.NotContains(t, app.Skills, "")
		assert.Len(t, []rune(app.Skills[4]), MaxListItemRunes)
		assert.Equal(t, []string{"go", "sql"}, app.Tags)
	})

	t.Run("free text is clamped and chain defaults", func(t *testing.T) {
		req := validRequest()
		req.Handle = strings.Repeat("h", 100)
		req.Bio = strings.Repeat("é", 900)
		app := req.Application()
		assert.Len(t, []rune(app.Handle), 40)
		assert.Len(t, []rune(app.Bio), 800)
		assert.Equal(t, DefaultChain, app.Chain)
	})
}

func TestNormalizeNote(t *testing.T) {
	assert.Equal(t, "looks good", NormalizeNote("  looks good  "))
	assert.Equal(t, strings.Repeat("n", MaxNoteRunes), NormalizeNote(strings.Repeat("n", MaxNoteRunes+1)))
	assert.Empty(t, NormalizeNote("   "))
}

func TestHoneypot(t *testing.T) {
	req := validRequest()
	assert.False(t, req.IsSpam())
	req.Company = " Acme "
	req.Normalize()
	assert.True(t, req.IsSpam())
}

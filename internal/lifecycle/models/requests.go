package models

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/asaskevich/govalidator"

	authmodels "vcc/internal/auth/models"
	profile "vcc/internal/profile/models"
	dErrors "vcc/pkg/domain-errors"
	"vcc/pkg/email"
	textutil "vcc/pkg/platform/strings"
)

const (
	MaxDisplayName    = 80
	MaxSubmissionRole = 80
	MaxReferences     = 3
	MaxListItems      = 30
	MaxListItemRunes  = 100
	MaxNoteRunes      = 500
	DefaultChain      = "solana"
)

// Free-text caps. Longer input is clamped, not rejected.
const (
	maxHandle      = 40
	maxLocation    = 80
	maxBio         = 800
	maxTelegram    = 80
	maxXHandle     = 80
	maxLink        = 200
	maxChain       = 24
	maxRefName     = 80
	maxRefRelation = 120
	maxRefContact  = 200
	maxRefLink     = 300
	maxRefNotes    = 400
)

// ReferenceInput is one reference row of the submission form.
type ReferenceInput struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship"`
	Contact      string `json:"contact"`
	Link         string `json:"link"`
	Notes        string `json:"notes"`
}

// SubmitApplicationRequest is the public application form. Company is a
// honeypot field that people never fill in.
type SubmitApplicationRequest struct {
	DisplayName     string           `json:"display_name"`
	SubmissionRole  string           `json:"role"`
	Email           string           `json:"email"`
	Password        string           `json:"password"`
	ConfirmPassword string           `json:"confirm_password"`
	Handle          string           `json:"handle"`
	Location        string           `json:"location"`
	Bio             string           `json:"bio"`
	SkillsCSV       string           `json:"skills"`
	TagsCSV         string           `json:"tags"`
	Telegram        string           `json:"telegram"`
	XHandle         string           `json:"x_handle"`
	Website         string           `json:"website"`
	GitHub          string           `json:"github"`
	LinkedIn        string           `json:"linkedin"`
	Chain           string           `json:"chain"`
	Wallet          string           `json:"wallet"`
	References      []ReferenceInput `json:"references"`
	Company         string           `json:"company"`
}

// Normalize trims every field and lower-cases the email. Passwords are kept verbatim.
func (r *SubmitApplicationRequest) Normalize() {
	r.DisplayName = strings.TrimSpace(r.DisplayName)
	r.SubmissionRole = strings.TrimSpace(r.SubmissionRole)
	r.Email = email.Normalize(r.Email)
	r.Handle = strings.TrimSpace(r.Handle)
	r.Location = strings.TrimSpace(r.Location)
	r.Bio = strings.TrimSpace(r.Bio)
	r.Telegram = strings.TrimSpace(r.Telegram)
	r.XHandle = strings.TrimSpace(r.XHandle)
	r.Website = strings.TrimSpace(r.Website)
	r.GitHub = strings.TrimSpace(r.GitHub)
	r.LinkedIn = strings.TrimSpace(r.LinkedIn)
	r.Chain = strings.TrimSpace(r.Chain)
	r.Wallet = strings.TrimSpace(r.Wallet)
	r.Company = strings.TrimSpace(r.Company)
	for i := range r.References {
		ref := &r.References[i]
		ref.Name = strings.TrimSpace(ref.Name)
		ref.Relationship = strings.TrimSpace(ref.Relationship)
		ref.Contact = strings.TrimSpace(ref.Contact)
		ref.Link = strings.TrimSpace(ref.Link)
		ref.Notes = strings.TrimSpace(ref.Notes)
	}
}

// IsSpam reports whether the honeypot field was filled.
func (r *SubmitApplicationRequest) IsSpam() bool {
	return r.Company != ""
}

// Validate accumulates every field problem. Credentials are only required
// when the caller has no session.
func (r *SubmitApplicationRequest) Validate(requireCredentials bool) error {
	var f dErrors.Fields
	switch {
	case r.DisplayName == "":
		f.Add("display_name", "is required")
	case utf8.RuneCountInString(r.DisplayName) > MaxDisplayName:
		f.Addf("display_name", "must be at most %d characters", MaxDisplayName)
	}
	switch {
	case r.SubmissionRole == "":
		f.Add("role", "is required")
	case utf8.RuneCountInString(r.SubmissionRole) > MaxSubmissionRole:
		f.Addf("role", "must be at most %d characters", MaxSubmissionRole)
	}
	if requireCredentials || r.Email != "" {
		authmodels.ValidateEmail(&f, r.Email)
	}
	if requireCredentials {
		authmodels.ValidatePassword(&f, r.Password)
		if r.Password != r.ConfirmPassword {
			f.Add("confirm_password", "does not match password")
		}
	}
	validateURL(&f, "website", r.Website)
	validateURL(&f, "github", r.GitHub)
	validateURL(&f, "linkedin", r.LinkedIn)
	for i, ref := range r.References {
		if ref.Name == "" {
			continue
		}
		validateURL(&f, "references["+strconv.Itoa(i)+"].link", ref.Link)
	}
	return f.Err()
}

// Application builds the capped application record.
func (r *SubmitApplicationRequest) Application() profile.Application {
	chain := textutil.ClampRunes(r.Chain, maxChain)
	if chain == "" {
		chain = DefaultChain
	}
	return profile.Application{
		SubmissionRole: textutil.ClampRunes(r.SubmissionRole, MaxSubmissionRole),
		Handle:         textutil.ClampRunes(r.Handle, maxHandle),
		Location:       textutil.ClampRunes(r.Location, maxLocation),
		Bio:            textutil.ClampRunes(r.Bio, maxBio),
		Skills:         textutil.SplitCSV(r.SkillsCSV, MaxListItems, MaxListItemRunes),
		Tags:           textutil.SplitCSV(r.TagsCSV, MaxListItems, MaxListItemRunes),
		Telegram:       textutil.ClampRunes(r.Telegram, maxTelegram),
		XHandle:        textutil.ClampRunes(r.XHandle, maxXHandle),
		Website:        textutil.ClampRunes(r.Website, maxLink),
		GitHub:         textutil.ClampRunes(r.GitHub, maxLink),
		LinkedIn:       textutil.ClampRunes(r.LinkedIn, maxLink),
		Chain:          chain,
		Wallet:         textutil.ClampRunes(r.Wallet, maxLink),
		References:     r.references(),
	}
}

// references drops rows without a name and keeps at most MaxReferences.
func (r *SubmitApplicationRequest) references() []profile.Reference {
	var out []profile.Reference
	for _, ref := range r.References {
		if ref.Name == "" {
			continue
		}
		if len(out) == MaxReferences {
			break
		}
		out = append(out, profile.Reference{
			Name:         textutil.ClampRunes(ref.Name, maxRefName),
			Relationship: textutil.ClampRunes(ref.Relationship, maxRefRelation),
			Contact:      textutil.ClampRunes(ref.Contact, maxRefContact),
			Link:         textutil.ClampRunes(ref.Link, maxRefLink),
			Notes:        textutil.ClampRunes(ref.Notes, maxRefNotes),
		})
	}
	return out
}

// NormalizeNote trims a reviewer note and cuts it to MaxNoteRunes.
func NormalizeNote(note string) string {
	return textutil.ClampRunes(note, MaxNoteRunes)
}

func validateURL(f *dErrors.Fields, field, raw string) {
	if raw == "" {
		return
	}
	lower := strings.ToLower(raw)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		f.Add(field, "must start with http:// or https://")
		return
	}
	if !govalidator.IsURL(raw) {
		f.Add(field, "must be a valid URL")
	}
}

package models

import (
	"strings"
	"unicode/utf8"

	dErrors "vcc/pkg/domain-errors"
	"vcc/pkg/email"
)

const (
	MinPasswordLength = 8
	// bcrypt ignores input past 72 bytes.
	MaxPasswordLength = 72
	MaxDisplayName    = 80
)

type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

func (r *RegisterRequest) Normalize() {
	r.Email = email.Normalize(r.Email)
	r.DisplayName = strings.TrimSpace(r.DisplayName)
}

func (r *RegisterRequest) Validate() error {
	var f dErrors.Fields
	ValidateEmail(&f, r.Email)
	ValidatePassword(&f, r.Password)
	if utf8.RuneCountInString(r.DisplayName) > MaxDisplayName {
		f.Addf("display_name", "must be at most %d characters", MaxDisplayName)
	}
	return f.Err()
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Normalize() {
	r.Email = email.Normalize(r.Email)
}

func (r *LoginRequest) Validate() error {
	var f dErrors.Fields
	if r.Email == "" {
		f.Add("email", "is required")
	}
	if r.Password == "" {
		f.Add("password", "is required")
	}
	return f.Err()
}

type UpdateRolesRequest struct {
	Roles []string `json:"roles"`
}

func (r *UpdateRolesRequest) Normalize() {
	out := r.Roles[:0]
	for _, role := range r.Roles {
		if role = strings.ToUpper(strings.TrimSpace(role)); role != "" {
			out = append(out, role)
		}
	}
	r.Roles = out
}

func (r *UpdateRolesRequest) Validate() error {
	if r.Roles == nil {
		return dErrors.New(dErrors.CodeValidation, "roles: is required")
	}
	return nil
}

type BootstrapAdminRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *BootstrapAdminRequest) Normalize() {
	r.Email = email.Normalize(r.Email)
}

func (r *BootstrapAdminRequest) Validate() error {
	var f dErrors.Fields
	ValidateEmail(&f, r.Email)
	ValidatePassword(&f, r.Password)
	return f.Err()
}

// ValidateEmail records a problem with a normalized address.
func ValidateEmail(f *dErrors.Fields, addr string) {
	switch {
	case addr == "":
		f.Add("email", "is required")
	case !email.IsValid(addr):
		f.Add("email", "must be a valid email address")
	}
}

// ValidatePassword enforces the length policy.
func ValidatePassword(f *dErrors.Fields, password string) {
	switch {
	case password == "":
		f.Add("password", "is required")
	case len(password) < MinPasswordLength:
		f.Addf("password", "must be at least %d characters", MinPasswordLength)
	case len(password) > MaxPasswordLength:
		f.Addf("password", "must be at most %d bytes", MaxPasswordLength)
	}
}

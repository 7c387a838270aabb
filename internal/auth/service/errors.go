package service

import (
	"errors"

	dErrors "vcc/pkg/domain-errors"
	"vcc/pkg/platform/sentinel"
)

func errInvalidCredentials() error {
	return dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")
}

func errEmailTaken() error {
	return dErrors.New(dErrors.CodeConflict, "an account with this email already exists")
}

func errVerificationInvalid() error {
	return dErrors.New(dErrors.CodeNotFound, "verification link is invalid or already used")
}

// translate maps store sentinels to domain errors and passes domain errors through.
func translate(err error, notFound, action string) error {
	if err == nil {
		return nil
	}
	if _, ok := dErrors.As(err); ok {
		return err
	}
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, notFound)
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "the account was modified concurrently, please retry")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to "+action)
}

// Package domain holds the typed identifiers and value types shared by every
// bounded context: IDs, roles and the authenticated principal.
package domain

import (
	"github.com/google/uuid"

	dErrors "vcc/pkg/domain-errors"
)

// Typed IDs prevent passing a session ID where a profile ID is expected.
type (
	ProfileID uuid.UUID
	SessionID uuid.UUID
	CommentID uuid.UUID
)

func (id ProfileID) String() string { return uuid.UUID(id).String() }
func (id ProfileID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id SessionID) String() string { return uuid.UUID(id).String() }
func (id SessionID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id CommentID) String() string { return uuid.UUID(id).String() }
func (id CommentID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

// MarshalText encodes the canonical UUID form so IDs read well in JSON.
func (id ProfileID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *ProfileID) UnmarshalText(b []byte) error {
	parsed, err := ParseProfileID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func NewProfileID() ProfileID { return ProfileID(uuid.New()) }
func NewSessionID() SessionID { return SessionID(uuid.New()) }
func NewCommentID() CommentID { return CommentID(uuid.New()) }

// ParseProfileID parses a client-supplied profile identifier.
func ParseProfileID(s string) (ProfileID, error) {
	u, err := parseUUID(s, "profile")
	return ProfileID(u), err
}

// ParseSessionID parses a session identifier.
func ParseSessionID(s string) (SessionID, error) {
	u, err := parseUUID(s, "session")
	return SessionID(u), err
}

// ParseCommentID parses a comment identifier.
func ParseCommentID(s string) (CommentID, error) {
	u, err := parseUUID(s, "comment")
	return CommentID(u), err
}

func parseUUID(s, kind string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s id is required", kind)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "invalid %s id", kind)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "invalid %s id", kind)
	}
	return u, nil
}

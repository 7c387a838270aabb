// Package models holds reviewer comments on applications.
package models

import (
	"strings"
	"time"
	"unicode/utf8"

	"vcc/pkg/domain"
	dErrors "vcc/pkg/domain-errors"
)

const MaxContentRunes = 1000

// Comment is an append-only staff note on an application. Comments are
// never edited or deleted.
type Comment struct {
	ID         domain.CommentID
	ProfileID  domain.ProfileID
	AuthorID   domain.ProfileID
	AuthorName string
	Content    string
	CreatedAt  time.Time
}

type AddCommentRequest struct {
	Content string `json:"content"`
}

func (r *AddCommentRequest) Normalize() {
	if r == nil {
		return
	}
	r.Content = strings.TrimSpace(r.Content)
}

func (r *AddCommentRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	switch {
	case r.Content == "":
		return dErrors.New(dErrors.CodeValidation, "content: is required")
	case utf8.RuneCountInString(r.Content) > MaxContentRunes:
		return dErrors.Newf(dErrors.CodeValidation, "content: must be at most %d characters", MaxContentRunes)
	}
	return nil
}

type CommentResponse struct {
	ID         string    `json:"id"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

func NewCommentResponse(c *Comment) CommentResponse {
	return CommentResponse{
		ID:         c.ID.String(),
		AuthorID:   c.AuthorID.String(),
		AuthorName: c.AuthorName,
		Content:    c.Content,
		CreatedAt:  c.CreatedAt,
	}
}

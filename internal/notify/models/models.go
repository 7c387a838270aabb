// Package models holds the transactional email shapes.
package models

import "errors"

// ErrTransportUnconfigured is returned by a sender that has no credentials.
var ErrTransportUnconfigured = errors.New("email transport is not configured")

// Audience selects who receives a message. Role audiences are resolved at
// send time so a freshly granted reviewer is included.
type Audience string

const (
	AudienceApplicant Audience = "applicant"
	AudienceReviewers Audience = "reviewers"
	AudienceApprovers Audience = "approvers"
)

// Message is one rendered email. To is empty until recipients are resolved.
type Message struct {
	Template string
	Audience Audience
	To       []string
	Subject  string
	Text     string
}

package models

import (
	"time"

	profile "vcc/internal/profile/models"
	"vcc/pkg/domain"
)

// TransitionEvent is published once per committed status change, including
// the initial submission (PreviousStatus NONE).
type TransitionEvent struct {
	ProfileID      domain.ProfileID `json:"profile_id"`
	ApplicantName  string           `json:"applicant_name"`
	ApplicantRole  string           `json:"applicant_role"`
	ApplicantEmail string           `json:"applicant_email"`
	PreviousStatus profile.Status   `json:"previous_status"`
	NewStatus      profile.Status   `json:"new_status"`
	ActorID        string           `json:"actor_id,omitempty"`
	OccurredAt     time.Time        `json:"occurred_at"`
}

// NewTransitionEvent snapshots p after a change from previous.
func NewTransitionEvent(p *profile.Profile, previous profile.Status, actor *domain.Principal, now time.Time) TransitionEvent {
	e := TransitionEvent{
		ProfileID:      p.ID,
		ApplicantName:  p.DisplayName,
		ApplicantRole:  p.SubmissionRole,
		ApplicantEmail: p.Email,
		PreviousStatus: previous,
		NewStatus:      p.Status,
		OccurredAt:     now,
	}
	if actor != nil {
		e.ActorID = actor.ID.String()
	}
	return e
}

// SubmitResult reports an accepted submission. A submission swallowed by
// the spam trap carries a throwaway ProfileID that was never stored.
type SubmitResult struct {
	ProfileID domain.ProfileID
	Status    profile.Status
	Created   bool
	Discarded bool
}

// SubmitResponse is the JSON acknowledgement of a submission.
type SubmitResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// TransitionRequest carries an optional reviewer note.
type TransitionRequest struct {
	Note string `json:"note"`
}

// TransitionResponse is the JSON result of a review action.
type TransitionResponse struct {
	ID         string     `json:"id"`
	Status     string     `json:"status"`
	Note       string     `json:"reviewer_note,omitempty"`
	ReviewedAt *time.Time `json:"reviewed_at,omitempty"`
}

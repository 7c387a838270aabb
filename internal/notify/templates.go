package notify

import (
	"strings"

	lifecycle "vcc/internal/lifecycle/models"
	"vcc/internal/notify/models"
	profile "vcc/internal/profile/models"
)

const signOff = "– VCC Verification Team"

// Links builds absolute front-end URLs from the configured base.
type Links struct {
	base string
}

func NewLinks(baseURL string) Links {
	base := strings.TrimSpace(baseURL)
	if base == "" {
		base = "http://localhost:3000"
	}
	return Links{base: strings.TrimRight(base, "/")}
}

func (l Links) URL(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return l.base + path
}

func lines(parts ...string) string {
	return strings.Join(parts, "\n")
}

func verificationMessage(l Links, to, name, token string) models.Message {
	return models.Message{
		Template: "verify_email",
		Audience: models.AudienceApplicant,
		To:       []string{to},
		Subject:  "Verify your email address",
		Text: lines(
			"Hi "+name+",",
			"",
			"Thanks for creating an account. Please verify your email address by clicking the link below:",
			"",
			l.URL("/verify-email/"+token),
			"",
			"This link will expire in 24 hours.",
			"",
			"If you didn't create this account, you can safely ignore this email.",
			"",
			signOff,
		),
	}
}

// messagesFor renders the emails owed for a transition. The outcome for the
// applicant depends on the stage the application left, so an administrative
// rejection of a PENDING application reads like a review rejection.
func messagesFor(l Links, e lifecycle.TransitionEvent) []models.Message {
	applicant := e.ApplicantName + " (" + e.ApplicantRole + ")"
	profileURL := l.URL("/directory/" + e.ProfileID.String())

	switch {
	case e.PreviousStatus == profile.StatusNone && e.NewStatus == profile.StatusPending:
		return []models.Message{
			{
				Template: "submitted_reviewers",
				Audience: models.AudienceReviewers,
				Subject:  "New application: " + applicant,
				Text: lines(
					"A new application was submitted by "+applicant+".",
					"Review queue: "+l.URL("/review"),
					"Profile: "+profileURL,
					"",
					"Please review and move to approval or reject as appropriate.",
				),
			},
			{
				Template: "submitted_applicant",
				Audience: models.AudienceApplicant,
				To:       []string{e.ApplicantEmail},
				Subject:  "We've received your application",
				Text: lines(
					"Hi "+e.ApplicantName+",",
					"",
					"Thanks for applying as "+e.ApplicantRole+". Our reviewers will take a look and you'll get an update soon.",
					"",
					"You can sign in anytime to check your status.",
					l.URL("/member"),
					"",
					signOff,
				),
			},
		}

	case e.NewStatus == profile.StatusReady:
		return []models.Message{
			{
				Template: "ready_approvers",
				Audience: models.AudienceApprovers,
				Subject:  "Ready for approval: " + applicant,
				Text: lines(
					applicant+" was cleared by review and is ready for approval.",
					"Approval queue: "+l.URL("/approve"),
					"Profile: "+profileURL,
				),
			},
			{
				Template: "ready_applicant",
				Audience: models.AudienceApplicant,
				To:       []string{e.ApplicantEmail},
				Subject:  "Your application advanced to approval",
				Text: lines(
					"Hi "+e.ApplicantName+",",
					"",
					"Good news: your application passed the initial review and is now in the final approval stage.",
					"We'll let you know once the final decision is made.",
					"",
					"You can check your status here:",
					l.URL("/member"),
					"",
					signOff,
				),
			},
		}

	case e.NewStatus == profile.StatusApproved:
		return []models.Message{{
			Template: "approved",
			Audience: models.AudienceApplicant,
			To:       []string{e.ApplicantEmail},
			Subject:  "You're approved!",
			Text: lines(
				"Hi "+e.ApplicantName+",",
				"",
				"Congratulations, your application for "+e.ApplicantRole+" has been approved!",
				"Your profile is now verified.",
				"",
				"View your profile:",
				l.URL("/member"),
				"",
				signOff,
			),
		}}

	case e.NewStatus == profile.StatusRejected && e.PreviousStatus == profile.StatusReady:
		return []models.Message{{
			Template: "rejected_final",
			Audience: models.AudienceApplicant,
			To:       []string{e.ApplicantEmail},
			Subject:  "Update on your application",
			Text: lines(
				"Hi "+e.ApplicantName+",",
				"",
				"Thank you for applying. After final review we aren't able to approve this time.",
				"We encourage you to re-apply in the future with new work or references.",
				"",
				signOff,
			),
		}}

	case e.NewStatus == profile.StatusRejected:
		return []models.Message{{
			Template: "rejected_review",
			Audience: models.AudienceApplicant,
			To:       []string{e.ApplicantEmail},
			Subject:  "Update on your application",
			Text: lines(
				"Hi "+e.ApplicantName+",",
				"",
				"Thanks for applying. After review, we aren't able to move forward right now.",
				"Feel free to strengthen your profile and re-apply later. We appreciate your interest.",
				"",
				signOff,
			),
		}}
	}
	return nil
}

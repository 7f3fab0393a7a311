package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// JoinRequestEmailData holds data for the email sent to a host when someone
// requests to join their activity.
type JoinRequestEmailData struct {
	HostEmail     string
	HostName      string
	RequesterName string
	ActivityTitle string
}

// DecisionEmailData holds data for the email sent to a requester when the
// host decides their request.
type DecisionEmailData struct {
	RequesterEmail string
	RequesterName  string
	ActivityTitle  string
	Accepted       bool
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendJoinRequestNotice(ctx context.Context, data *JoinRequestEmailData) error
	SendDecisionNotice(ctx context.Context, data *DecisionEmailData) error
}

package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// Template names for the moderation outcome emails.
const (
	EmailTemplateRequestConfirmed = "request_confirmed"
	EmailTemplateRequestRejected  = "request_rejected"
)

// RequestOutcomeEmailData holds data for the moderation outcome email sent to a requester.
type RequestOutcomeEmailData struct {
	Email      string
	Name       string
	EventTitle string
	EventID    int64
	RequestID  int64
	Status     RequestStatus
}

// ModerationNotifier tells requesters how their requests were decided.
// Implementations are best effort: failures are logged and never returned to the caller.
type ModerationNotifier interface {
	NotifyModeration(ctx context.Context, event *Event, result *ModerationResult)
}

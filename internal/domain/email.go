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

// ClosingSummaryEmailData holds data for the event closing summary email.
type ClosingSummaryEmailData struct {
	EventName      string
	TotalRevenue   float64
	OrdersCount    int
	TotalItemsSold int
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendClosingSummary(ctx context.Context, to string, data *ClosingSummaryEmailData) error
}

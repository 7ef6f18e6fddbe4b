package services

import (
	"context"
	"fmt"
	"log"

	"boothsale/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer}
}

// SendClosingSummary sends the event closing recap using the "closing_summary" template.
func (s *emailService) SendClosingSummary(ctx context.Context, to string, data *domain.ClosingSummaryEmailData) error {
	if data == nil {
		return fmt.Errorf("closing summary data is nil")
	}
	subject, htmlBody, textBody, err := s.renderer.Render("closing_summary", data)
	if err != nil {
		return fmt.Errorf("failed to render closing_summary template: %w", err)
	}
	if err := s.mailer.Send(to, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send closing summary email: %w", err)
	}
	log.Printf("[EMAIL] Closing summary sent to %s", to)
	return nil
}

package services

import (
	"context"
	"fmt"

	"spontimeet/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer}
}

// SendJoinRequestNotice emails the host that someone wants to join their
// activity, using the "join_request" template.
func (s *emailService) SendJoinRequestNotice(ctx context.Context, data *domain.JoinRequestEmailData) error {
	if data == nil {
		return fmt.Errorf("join request email data is nil")
	}
	subject, htmlBody, textBody, err := s.renderer.Render("join_request", data)
	if err != nil {
		return fmt.Errorf("failed to render join_request template: %w", err)
	}
	if err := s.mailer.Send(data.HostEmail, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send join request email: %w", err)
	}
	return nil
}

// SendDecisionNotice emails the requester the host's decision, using the
// "decision" template.
func (s *emailService) SendDecisionNotice(ctx context.Context, data *domain.DecisionEmailData) error {
	if data == nil {
		return fmt.Errorf("decision email data is nil")
	}
	subject, htmlBody, textBody, err := s.renderer.Render("decision", data)
	if err != nil {
		return fmt.Errorf("failed to render decision template: %w", err)
	}
	if err := s.mailer.Send(data.RequesterEmail, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send decision email: %w", err)
	}
	return nil
}

package services

import (
	"context"
	"fmt"
	"log/slog"

	"chyrp/internal/domain"
)

const commentNotificationTemplate = "comment_notification"

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	logger   *slog.Logger
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, logger *slog.Logger) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer, logger: logger}
}

// SendCommentNotification tells a post's author about a new comment using the
// "comment_notification" template.
func (s *emailService) SendCommentNotification(ctx context.Context, data *domain.CommentNotificationEmailData) error {
	if data == nil {
		return fmt.Errorf("comment notification data is nil")
	}
	if data.Email == "" {
		return fmt.Errorf("comment notification has no recipient")
	}
	subject, htmlBody, textBody, err := s.renderer.Render(commentNotificationTemplate, data)
	if err != nil {
		return fmt.Errorf("failed to render %s template: %w", commentNotificationTemplate, err)
	}
	if err := s.mailer.Send(ctx, data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send comment notification: %w", err)
	}
	s.logger.InfoContext(ctx, "comment notification sent", "to", data.Email, "post", data.PostSlug)
	return nil
}

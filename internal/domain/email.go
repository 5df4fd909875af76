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

// CommentNotificationEmailData holds data for the new-comment email sent to a post's author.
type CommentNotificationEmailData struct {
	Email         string
	AuthorName    string
	CommenterName string
	PostTitle     string
	PostSlug      string
	Excerpt       string
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendCommentNotification(ctx context.Context, data *CommentNotificationEmailData) error
}

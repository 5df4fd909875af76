package services

import (
	"context"
	"errors"
	"testing"

	"chyrp/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMail struct {
	to, subject, html, text string
}

type fakeMailer struct {
	sent []sentMail
	err  error
}

func (f *fakeMailer) Send(ctx context.Context, to, subject, html, text string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{to, subject, html, text})
	return nil
}

type fakeRenderer struct {
	names []string
	err   error
}

func (f *fakeRenderer) Render(name string, data any) (string, string, string, error) {
	f.names = append(f.names, name)
	if f.err != nil {
		return "", "", "", f.err
	}
	d := data.(*domain.CommentNotificationEmailData)
	return "New comment on " + d.PostTitle, "<p>" + d.Excerpt + "</p>", d.Excerpt, nil
}

func TestEmailService_SendCommentNotification(t *testing.T) {
	mailer := &fakeMailer{}
	renderer := &fakeRenderer{}
	svc := NewEmailService(mailer, renderer, testLogger)

	err := svc.SendCommentNotification(context.Background(), &domain.CommentNotificationEmailData{
		Email:     "writer@example.com",
		PostTitle: "Hello",
		Excerpt:   "Great read",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"comment_notification"}, renderer.names)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, sentMail{"writer@example.com", "New comment on Hello", "<p>Great read</p>", "Great read"}, mailer.sent[0])
}

func TestEmailService_SendCommentNotification_Errors(t *testing.T) {
	ctx := context.Background()
	data := &domain.CommentNotificationEmailData{Email: "writer@example.com"}

	svc := NewEmailService(&fakeMailer{}, &fakeRenderer{}, testLogger)
	assert.Error(t, svc.SendCommentNotification(ctx, nil))
	assert.Error(t, svc.SendCommentNotification(ctx, &domain.CommentNotificationEmailData{}))

	renderErr := errors.New("template missing")
	svc = NewEmailService(&fakeMailer{}, &fakeRenderer{err: renderErr}, testLogger)
	assert.ErrorIs(t, svc.SendCommentNotification(ctx, data), renderErr)

	sendErr := errors.New("ses rejected")
	mailer := &fakeMailer{err: sendErr}
	svc = NewEmailService(mailer, &fakeRenderer{}, testLogger)
	assert.ErrorIs(t, svc.SendCommentNotification(ctx, data), sendErr)
	assert.Empty(t, mailer.sent)
}

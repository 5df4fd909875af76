package email

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chyrp/internal/domain"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type fakeSES struct {
	inputs []*ses.SendEmailInput
	err    error
}

func (f *fakeSES) SendEmail(ctx context.Context, in *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.inputs = append(f.inputs, in)
	return &ses.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestSESMailer_Send(t *testing.T) {
	client := &fakeSES{}
	m := newSESMailer(client, "blog@example.com", "Chyrp", discard)

	require.NoError(t, m.Send(context.Background(), "writer@example.com", "Hi", "<p>Hi</p>", ""))
	require.Len(t, client.inputs, 1)
	in := client.inputs[0]
	assert.Equal(t, "Chyrp <blog@example.com>", aws.ToString(in.Source))
	assert.Equal(t, []string{"writer@example.com"}, in.Destination.ToAddresses)
	assert.Equal(t, "Hi", aws.ToString(in.Message.Subject.Data))
	assert.Equal(t, "<p>Hi</p>", aws.ToString(in.Message.Body.Html.Data))
	assert.Nil(t, in.Message.Body.Text)
}

func TestSESMailer_SendError(t *testing.T) {
	boom := errors.New("throttled")
	m := newSESMailer(&fakeSES{err: boom}, "blog@example.com", "", discard)

	err := m.Send(context.Background(), "w@example.com", "s", "", "t")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "blog@example.com", m.source)
}

func TestNewMailer(t *testing.T) {
	m, err := NewMailer(MailerConfig{Provider: "noop"}, discard)
	require.NoError(t, err)
	assert.IsType(t, &noopMailer{}, m)
	assert.NoError(t, m.Send(context.Background(), "a@b.io", "s", "h", "t"))

	m, err = NewMailer(MailerConfig{Provider: "carrier-pigeon"}, discard)
	require.NoError(t, err)
	assert.IsType(t, &noopMailer{}, m)

	_, err = NewMailer(MailerConfig{Provider: "ses"}, discard)
	assert.Error(t, err)

	m, err = NewMailer(MailerConfig{Provider: "ses", FromAddress: "blog@example.com", SES: SESConfig{Region: "us-east-1"}}, discard)
	require.NoError(t, err)
	assert.IsType(t, &sesMailer{}, m)
}

func TestTemplateRenderer_CommentNotification(t *testing.T) {
	r, err := NewTemplateRenderer()
	require.NoError(t, err)

	subject, html, text, err := r.Render("comment_notification", &domain.CommentNotificationEmailData{
		Email:         "writer@example.com",
		AuthorName:    "Wendy",
		CommenterName: "Rob",
		PostTitle:     "Hello",
		PostSlug:      "hello",
		Excerpt:       "<b>great</b> post",
	})
	require.NoError(t, err)
	assert.Equal(t, `New comment on "Hello"`, subject)
	assert.Contains(t, html, "&lt;b&gt;great&lt;/b&gt; post")
	assert.Contains(t, html, `href="/posts/slug/hello"`)
	assert.Contains(t, text, "Rob commented on your post \"Hello\":")
	assert.Contains(t, text, "<b>great</b> post")
}

func TestTemplateRenderer_UnknownTemplate(t *testing.T) {
	r, err := NewTemplateRenderer()
	require.NoError(t, err)

	_, _, _, err = r.Render("welcome", nil)
	assert.Error(t, err)
}

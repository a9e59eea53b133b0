// Package resend delivers composed emails through the Resend transactional
// email API. Each inline image travels as an API attachment whose content ID
// matches the cid: reference in the HTML part.
package resend

import (
	"context"
	"strings"

	"github.com/resend/resend-go/v3"

	"github.com/publipost/publipost/pkg/mailer"
)

// Sender implements mailer.Sender using the Resend API.
type Sender struct {
	client *resend.Client
	cfg    mailer.ResendConfig
}

// New creates a Resend sender for the given configuration.
func New(cfg mailer.ResendConfig) *Sender {
	return &Sender{
		client: resend.NewClient(cfg.APIKey),
		cfg:    cfg,
	}
}

// Send implements mailer.Sender.
func (s *Sender) Send(ctx context.Context, email *mailer.Email) error {
	req := &resend.SendEmailRequest{
		From:    s.cfg.SenderEmail,
		To:      []string{email.To},
		Subject: email.Subject,
		Html:    email.HTML,
		Text:    email.Text,
	}

	if len(email.Inline) > 0 {
		req.Attachments = convertAttachments(email.Inline)
	}

	if _, err := s.client.Emails.SendWithContext(ctx, req); err != nil {
		return classify(err)
	}
	return nil
}

func convertAttachments(inline []mailer.Attachment) []*resend.Attachment {
	result := make([]*resend.Attachment, len(inline))
	for i, a := range inline {
		result[i] = &resend.Attachment{
			Filename:    a.Filename,
			Content:     a.Content,
			ContentType: a.ContentType,
			ContentId:   a.ContentID,
		}
	}
	return result
}

// classify maps Resend client errors onto the delivery failure taxonomy.
// The SDK surfaces HTTP-level detail in the error text only, so the mapping
// is textual: 401/403 mean the key was rejected, 4xx validation errors mean
// the provider refused this specific message.
func classify(err error) *mailer.DeliveryError {
	msg := err.Error()
	switch {
	case containsAny(msg, "401", "403", "unauthorized", "invalid api key", "forbidden"):
		return mailer.NewDeliveryError(mailer.FailureAuth, "resend api key rejected", err)
	case containsAny(msg, "400", "404", "422", "429", "validation"):
		return mailer.NewDeliveryError(mailer.FailureRejected, "message rejected by resend", err)
	default:
		return mailer.NewDeliveryError(mailer.FailureConnection, "resend request failed", err)
	}
}

func containsAny(s string, subs ...string) bool {
	lower := strings.ToLower(s)
	for _, sub := range subs {
		if strings.Contains(lower, sub) {
			return true
		}
	}
	return false
}

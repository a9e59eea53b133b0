// Package gmail delivers composed emails by submitting the raw MIME message
// to the Gmail API (users.messages.send). The wire bytes are identical to
// what the SMTP transport would send; only the submission channel differs,
// which makes mail sent this way indistinguishable from mail sent out of the
// sender's own mailbox.
package gmail

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/publipost/publipost/pkg/mailer"
	"github.com/publipost/publipost/pkg/mailer/mime"
)

// DefaultEndpoint is the Gmail API send URL for the authenticated user.
const DefaultEndpoint = "https://gmail.googleapis.com/gmail/v1/users/me/messages/send"

const defaultTimeout = 30 * time.Second

// maxErrorBody bounds how much of an error response is kept for diagnostics.
const maxErrorBody = 2048

// Sender implements mailer.Sender against the Gmail API.
type Sender struct {
	cfg      mailer.GmailConfig
	endpoint string
	client   *http.Client
}

// Option configures a Sender.
type Option func(*Sender)

// WithHTTPClient overrides the HTTP client, mainly for tests.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Sender) { s.client = c }
}

// New creates a Gmail API sender for the given configuration.
func New(cfg mailer.GmailConfig, opts ...Option) *Sender {
	s := &Sender{
		cfg:      cfg,
		endpoint: cfg.Endpoint,
		client:   &http.Client{Timeout: defaultTimeout},
	}
	if s.endpoint == "" {
		s.endpoint = DefaultEndpoint
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type sendRequest struct {
	Raw string `json:"raw"`
}

// Send implements mailer.Sender.
func (s *Sender) Send(ctx context.Context, email *mailer.Email) error {
	msg, err := mime.Build(s.cfg.SenderEmail, email)
	if err != nil {
		return err
	}
	raw, err := mime.Raw(msg)
	if err != nil {
		return err
	}

	body, err := json.Marshal(sendRequest{Raw: base64.URLEncoding.EncodeToString(raw)})
	if err != nil {
		return mailer.NewDeliveryError(mailer.FailureLocal, "failed to encode request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return mailer.NewDeliveryError(mailer.FailureLocal, "failed to build request", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return mailer.NewDeliveryError(mailer.FailureConnection, "gmail api unreachable", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK,
		resp.StatusCode == http.StatusCreated,
		resp.StatusCode == http.StatusAccepted:
		return nil
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return mailer.NewDeliveryError(mailer.FailureAuth,
			fmt.Sprintf("gmail api auth failed (%d): %s", resp.StatusCode, errorBody(resp.Body)), nil)
	default:
		return mailer.NewDeliveryError(mailer.FailureRejected,
			fmt.Sprintf("gmail api error %d: %s", resp.StatusCode, errorBody(resp.Body)), nil)
	}
}

func errorBody(r io.Reader) string {
	b, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil {
		return ""
	}
	return string(bytes.TrimSpace(b))
}

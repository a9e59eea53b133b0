// Package smtp delivers composed emails through a mail submission server.
// One connection is dialed per send and closed after submission: throughput
// is traded for fault isolation, and sequential single connections avoid
// the throttling that concurrent sessions on one account tend to trigger.
package smtp

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/publipost/publipost/pkg/logger"
	"github.com/publipost/publipost/pkg/mailer"
	"github.com/publipost/publipost/pkg/mailer/mime"
)

// sslPort is the well-known implicit-TLS submission port. Connections to it
// are established already encrypted; any other port starts in cleartext and
// upgrades via STARTTLS before AUTH.
const sslPort = 465

const defaultTimeout = 30 * time.Second

// Sender implements mailer.Sender over SMTP using go-mail.
type Sender struct {
	cfg     mailer.SMTPConfig
	timeout time.Duration
	log     *slog.Logger
}

// Option configures a Sender.
type Option func(*Sender)

// WithTimeout bounds each connect/submit round trip.
func WithTimeout(d time.Duration) Option {
	return func(s *Sender) { s.timeout = d }
}

// WithLogger sets the logger for per-attempt logging.
func WithLogger(log *slog.Logger) Option {
	return func(s *Sender) { s.log = log }
}

// New creates an SMTP sender for the given configuration.
func New(cfg mailer.SMTPConfig, opts ...Option) *Sender {
	s := &Sender{
		cfg:     cfg,
		timeout: defaultTimeout,
		log:     logger.NewNope(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Send implements mailer.Sender.
func (s *Sender) Send(ctx context.Context, email *mailer.Email) error {
	msg, err := mime.Build(s.cfg.Email, email)
	if err != nil {
		return err
	}

	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.cfg.Email),
		mail.WithPassword(s.cfg.Password),
		mail.WithTimeout(s.timeout),
	}
	if s.cfg.Port == sslPort {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	}

	client, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return mailer.NewDeliveryError(mailer.FailureLocal, "smtp client init failed", err)
	}

	s.log.InfoContext(ctx, "smtp send attempt",
		slog.String("host", s.cfg.Host),
		slog.Int("port", s.cfg.Port),
		slog.String("to", email.To),
	)

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		s.log.ErrorContext(ctx, "smtp send failed",
			slog.String("to", email.To),
			slog.String("error", err.Error()),
		)
		return classify(err)
	}

	return nil
}

// classify maps go-mail errors onto the delivery failure taxonomy using the
// SMTP reply codes embedded in the error text.
func classify(err error) *mailer.DeliveryError {
	msg := err.Error()
	switch {
	case containsAny(msg, "535", "5.7.8", "authentication", "Username and Password not accepted"):
		return mailer.NewDeliveryError(mailer.FailureAuth, "smtp credentials rejected", err)
	case containsAny(msg, "550", "552", "553", "554", "5.1.1", "5.7.1"):
		return mailer.NewDeliveryError(mailer.FailureRejected, "message rejected by server", err)
	default:
		return mailer.NewDeliveryError(mailer.FailureConnection, "smtp delivery failed", err)
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// Package dispatch iterates a recipient list and performs one delivery
// attempt per recipient, recording per-recipient outcomes and emitting
// progress events any frontend can consume.
//
// Recipients are processed strictly sequentially, in list order, with a
// fixed pacing delay between sends. This is a deliberate safety choice over
// throughput: concurrent connections to the same account commonly trip
// provider rate limits or flag the account.
package dispatch

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/publipost/publipost/pkg/logger"
	"github.com/publipost/publipost/pkg/mailer"
	"github.com/publipost/publipost/pkg/mailer/gmail"
	"github.com/publipost/publipost/pkg/mailer/resend"
	"github.com/publipost/publipost/pkg/mailer/smtp"
)

// defaultDelay paces consecutive sends within a batch.
const defaultDelay = 500 * time.Millisecond

// The synthetic recipient used by test sends, addressed to the sender's own
// address so an operator can validate a configuration before a real batch.
const (
	testNom    = "Dupont"
	testPrenom = "Jean"
	testNumero = "12345"
)

// Event reports the outcome of one processed recipient. Index is zero-based
// and follows list order.
type Event struct {
	Index int
	Total int
	Email string
	Err   error // nil on success
}

// Fraction is the share of the batch processed after this event.
func (e Event) Fraction() float64 {
	if e.Total == 0 {
		return 0
	}
	return float64(e.Index+1) / float64(e.Total)
}

// Report aggregates a finished (or cancelled) batch.
type Report struct {
	Sent   int
	Failed int
}

// SenderFactory builds the transport adapter for a provider configuration.
// Overridable for tests.
type SenderFactory func(cfg mailer.ProviderConfig) (mailer.Sender, error)

// Dispatcher runs batch and test sends.
type Dispatcher struct {
	composer   *mailer.Composer
	log        *slog.Logger
	delay      time.Duration
	onProgress func(Event)
	newSender  SenderFactory
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithDelay sets the pacing delay between consecutive recipients.
// Zero disables pacing.
func WithDelay(d time.Duration) Option {
	return func(dp *Dispatcher) { dp.delay = d }
}

// WithLogger sets the structured logger.
func WithLogger(log *slog.Logger) Option {
	return func(dp *Dispatcher) { dp.log = log }
}

// WithProgress registers a callback invoked after each processed recipient,
// in list order, from the dispatching goroutine.
func WithProgress(fn func(Event)) Option {
	return func(dp *Dispatcher) { dp.onProgress = fn }
}

// WithComposer replaces the default composer, e.g. to enable markdown
// bodies or field sanitization.
func WithComposer(c *mailer.Composer) Option {
	return func(dp *Dispatcher) { dp.composer = c }
}

// WithSenderFactory overrides transport construction. Tests use this to
// inject fakes.
func WithSenderFactory(f SenderFactory) Option {
	return func(dp *Dispatcher) { dp.newSender = f }
}

// New creates a Dispatcher.
func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		composer: mailer.NewComposer(),
		log:      logger.NewNope(),
		delay:    defaultDelay,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.newSender == nil {
		d.newSender = d.defaultSenderFactory
	}
	return d
}

// defaultSenderFactory is the single dispatch point over the provider
// configuration sum type.
func (d *Dispatcher) defaultSenderFactory(cfg mailer.ProviderConfig) (mailer.Sender, error) {
	switch c := cfg.(type) {
	case mailer.SMTPConfig:
		return smtp.New(c, smtp.WithLogger(d.log)), nil
	case mailer.ResendConfig:
		return resend.New(c), nil
	case mailer.GmailConfig:
		return gmail.New(c), nil
	default:
		return nil, mailer.ErrInvalidConfig
	}
}

// SendAll composes and sends one message per recipient, mutating each
// recipient's Status and Error in place. One recipient's failure never
// blocks the rest; the batch runs to the end of the list unless ctx is
// cancelled, in which case the remaining recipients are left untouched and
// the report so far is returned alongside ctx.Err().
//
// The provider configuration is validated and the adapter built once, up
// front: an invalid configuration aborts before any recipient is touched,
// and configuration edits made while a batch is in flight cannot affect it.
func (d *Dispatcher) SendAll(ctx context.Context, cfg mailer.ProviderConfig, tmpl mailer.Template, recipients []*mailer.Recipient, defaultImage []byte) (Report, error) {
	var report Report

	if err := cfg.Validate(); err != nil {
		return report, err
	}
	sender, err := d.newSender(cfg)
	if err != nil {
		return report, err
	}

	ctx = ContextWithBatchID(ctx, uuid.NewString())
	total := len(recipients)
	d.log.InfoContext(ctx, "batch started", slog.Int("recipients", total))

	for i, r := range recipients {
		if i > 0 {
			if err := pause(ctx, d.delay); err != nil {
				d.log.InfoContext(ctx, "batch cancelled",
					slog.Int("processed", i),
					slog.Int("sent", report.Sent),
					slog.Int("failed", report.Failed),
				)
				return report, err
			}
		}

		email := d.composer.Compose(tmpl, *r, defaultImage, r.Images)
		sendErr := sender.Send(ctx, email)
		r.SetOutcome(sendErr)

		if sendErr != nil {
			report.Failed++
			d.log.ErrorContext(ctx, "send failed",
				slog.String("to", r.Email),
				slog.String("error", sendErr.Error()),
			)
		} else {
			report.Sent++
			d.log.InfoContext(ctx, "send ok", slog.String("to", r.Email))
		}

		d.emit(Event{Index: i, Total: total, Email: r.Email, Err: sendErr})
	}

	d.log.InfoContext(ctx, "batch finished",
		slog.Int("sent", report.Sent),
		slog.Int("failed", report.Failed),
	)
	return report, nil
}

// SendTest sends a single message to the configured sender's own address,
// using a fabricated sample recipient. It never touches a real recipient
// list; the shared default image is included so the test reflects what the
// batch will send.
func (d *Dispatcher) SendTest(ctx context.Context, cfg mailer.ProviderConfig, tmpl mailer.Template, defaultImage []byte) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	sender, err := d.newSender(cfg)
	if err != nil {
		return err
	}

	r := mailer.Recipient{
		Email:  cfg.SenderAddress(),
		Nom:    testNom,
		Prenom: testPrenom,
		Numero: testNumero,
	}

	email := d.composer.Compose(tmpl, r, defaultImage, nil)
	return sender.Send(ctx, email)
}

func (d *Dispatcher) emit(e Event) {
	if d.onProgress != nil {
		d.onProgress(e)
	}
}

// pause waits the pacing delay, returning early with the context error on
// cancellation. This is the batch's only suspension point besides the
// transport round trips themselves.
func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

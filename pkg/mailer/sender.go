package mailer

import "context"

// Sender is the contract every transport adapter implements: translate one
// composed Email into the provider's wire format and perform exactly one
// delivery attempt. No retries, no batching.
//
// Send must return a definite outcome: any transport fault is converted into
// a *DeliveryError rather than allowed to escape.
type Sender interface {
	Send(ctx context.Context, email *Email) error
}

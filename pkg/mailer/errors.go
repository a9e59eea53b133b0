package mailer

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig indicates an incomplete provider configuration.
	// It is checked before any network attempt and blocks the whole batch.
	ErrInvalidConfig = errors.New("provider configuration is incomplete")

	// ErrSendFailed wraps any per-recipient delivery failure.
	ErrSendFailed = errors.New("failed to send email")
)

// FailureKind classifies a delivery failure for reporting. The kinds mirror
// what an operator can act on: fix credentials, fix the network, or fix the
// message/recipient.
type FailureKind string

const (
	// FailureConnection covers dial, TLS handshake, and timeout faults.
	FailureConnection FailureKind = "connection"
	// FailureAuth covers rejected credentials.
	FailureAuth FailureKind = "auth"
	// FailureRejected covers provider-side refusal of a specific message:
	// bad recipient address, oversized payload, quota exceeded.
	FailureRejected FailureKind = "rejected"
	// FailureLocal covers faults before the wire, such as building an
	// invalid message from local input.
	FailureLocal FailureKind = "local"
)

// DeliveryError is a classified, single-recipient delivery failure. It is
// always scoped to one send attempt; the batch continues past it.
type DeliveryError struct {
	Kind FailureKind
	Msg  string
	Err  error
}

func (e *DeliveryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// NewDeliveryError builds a classified delivery failure. err may be nil when
// the provider returned a textual rejection with no underlying error.
func NewDeliveryError(kind FailureKind, msg string, err error) *DeliveryError {
	return &DeliveryError{Kind: kind, Msg: msg, Err: err}
}

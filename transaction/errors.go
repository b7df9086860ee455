package transaction

import "github.com/pkg/errors"

var (
	// ErrInvalidAmount is returned when an amount is malformed: negative,
	// above the money supply, or inconsistent with the transaction outputs.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrChannelExhausted is returned when everything was already paid.
	ErrChannelExhausted = errors.New("no more payments can be sent")
	// ErrFeeConvergence is returned when no fee within the acceptance band
	// was found within MaxFeeIterations rounds.
	ErrFeeConvergence = errors.New("fee selection did not converge")
	// ErrUnknownKey is returned when signing with a key that is not part of
	// the channel.
	ErrUnknownKey = errors.New("key is not a channel key")
	// ErrInvalidRecord is returned when a record or the transaction it
	// carries does not describe a channel transaction.
	ErrInvalidRecord = errors.New("invalid record")
	// ErrSignatureScript is returned when the signature script of the
	// funding input is not a 2-of-2 multisig script of the channel.
	ErrSignatureScript = errors.New("malformed signature script")
	// ErrMissingTimeout is returned for refunds without a lock time.
	ErrMissingTimeout = errors.New("refund has no timeout")
)

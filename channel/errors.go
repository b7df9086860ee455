package channel

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrMissingOutput is returned when an accepted provider requires a
	// payment output to its payment address and none is present.
	ErrMissingOutput = errors.New("payment has no output to the provider")
	// ErrScriptVerification is returned when the funding input does not
	// verify against the channel's redeem script.
	ErrScriptVerification = errors.New("funding input failed script verification")
	// ErrStalePayment is matched by every *StalePaymentError.
	ErrStalePayment = errors.New("payment does not exceed the accepted amount")
	// ErrNoPaymentAccepted is returned when settling before any payment was
	// validated.
	ErrNoPaymentAccepted = errors.New("no payment accepted")
	// ErrChannelMismatch is returned for records of a channel other than the
	// one the provider serves.
	ErrChannelMismatch = errors.New("record belongs to another channel")
	// ErrNoNetwork is returned when a provider is configured without network.
	ErrNoNetwork = errors.New("no network configured")
	// ErrRefundTimeout is returned for refunds that unlock earlier than the
	// provider allows.
	ErrRefundTimeout = errors.New("refund timeout too early")
)

// StalePaymentError reports a payment whose provider output does not exceed
// the amount accepted so far.
type StalePaymentError struct {
	Amount  int64
	Current int64
}

func (e *StalePaymentError) Error() string {
	return fmt.Sprintf("%v: %d <= %d", ErrStalePayment, e.Amount, e.Current)
}

func (e *StalePaymentError) Is(target error) bool {
	return target == ErrStalePayment
}

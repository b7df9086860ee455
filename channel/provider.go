package channel

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/wire"
	"github.com/pkg/errors"
	perunwallet "perun.network/go-perun/wallet"
	"perun.network/perun-btc-paychan/encoding"
	"perun.network/perun-btc-paychan/transaction"
	"perun.network/perun-btc-paychan/wallet"
	"polycry.pt/poly-go/sync"
)

// Uninitialized is the current amount of a provider that has not accepted a
// payment yet. In this state a payment without output to the provider is
// accepted to bootstrap the channel.
const Uninitialized int64 = -1

type Config struct {
	// Network is required, there is no default network.
	Network *chaincfg.Params
	// PaymentAddress receives the payments. If empty, a fresh key is
	// generated and its pay-to-pubkey-hash address is used.
	PaymentAddress string
	// CurrentAmount resumes a provider at the given amount. Nil means
	// Uninitialized.
	CurrentAmount *int64
	// Key is the provider's channel key. If nil, a fresh key is generated.
	Key *btcec.PrivateKey
	// MinRefundTimeout is the earliest refund lock time the provider signs,
	// in the unit of the lock time (block height or unix time).
	MinRefundTimeout uint32
	// KeepHistory retains every accepted payment instead of only the latest.
	KeepHistory bool
	Logger      Logger
}

// Provider is the receiving side of a channel. It validates payments from
// the payer, keeps the best one for settlement and signs the payer's refund.
// All methods are safe for concurrent use. Validations are serialized, so
// two concurrent payments can never both be accepted against the same
// current amount.
type Provider struct {
	mu sync.Mutex

	network          *chaincfg.Params
	wallet           *wallet.EphemeralWallet
	account          *wallet.Account
	paymentAddress   btcutil.Address
	paymentKey       *btcec.PrivateKey
	minRefundTimeout uint32
	log              Logger

	channel       *transaction.ChannelParams
	currentAmount int64
	paymentTx     *transaction.Payment
	refund        *transaction.Refund
	history       *History
}

func NewProvider(cfg Config) (*Provider, error) {
	if cfg.Network == nil {
		return nil, ErrNoNetwork
	}
	p := &Provider{
		network:          cfg.Network,
		minRefundTimeout: cfg.MinRefundTimeout,
		currentAmount:    Uninitialized,
		log:              cfg.Logger,
		wallet:           wallet.NewEphemeralWallet(),
	}
	if p.log == nil {
		p.log = noopLogger{}
	}

	var err error
	if cfg.Key != nil {
		p.account, err = p.wallet.ImportKey(cfg.Key)
	} else {
		p.account, err = p.wallet.AddNewAccount()
	}
	if err != nil {
		return nil, errors.Wrap(err, "adding channel key")
	}

	if cfg.PaymentAddress == "" {
		acc, err := p.wallet.AddNewAccount()
		if err != nil {
			return nil, errors.Wrap(err, "generating payment key")
		}
		if p.paymentAddress, err = acc.PayToAddress(cfg.Network); err != nil {
			return nil, errors.Wrap(err, "deriving payment address")
		}
		p.paymentKey = acc.Key()
	} else {
		addr, err := btcutil.DecodeAddress(cfg.PaymentAddress, cfg.Network)
		if err != nil {
			return nil, errors.Wrapf(err, "decoding payment address %q", cfg.PaymentAddress)
		}
		if !addr.IsForNet(cfg.Network) {
			return nil, errors.Errorf("payment address %s is not for %s", cfg.PaymentAddress, cfg.Network.Name)
		}
		p.paymentAddress = addr
	}

	if cfg.CurrentAmount != nil {
		if *cfg.CurrentAmount < Uninitialized || *cfg.CurrentAmount > btcutil.MaxSatoshi {
			return nil, errors.Wrapf(transaction.ErrInvalidAmount, "current amount %d", *cfg.CurrentAmount)
		}
		p.currentAmount = *cfg.CurrentAmount
	}
	if cfg.KeepHistory {
		p.history = NewHistory()
	}
	return p, nil
}

// ValidatePayment accepts the payment in rec if it pays the provider more
// than the current amount. The provider signs its share, verifies the
// funding input and then replaces the accepted payment. A rejected payment
// leaves the provider unchanged.
func (p *Provider) ValidatePayment(rec *encoding.PaymentRecord) (*transaction.Payment, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	payment, err := transaction.PaymentFromRecord(rec, p.network)
	if errors.Is(err, transaction.ErrSignatureScript) {
		p.log.Warnf("Rejecting payment %d: %v", rec.Sequence, err)
		return nil, errors.Wrap(ErrScriptVerification, err.Error())
	} else if err != nil {
		return nil, errors.WithMessage(err, "decoding payment")
	}
	if err := p.checkChannel(payment.Channel()); err != nil {
		return nil, err
	}
	if err := payment.Sign(p.account.Key()); err != nil {
		return nil, errors.WithMessage(err, "signing payment")
	}

	amount := payment.ValueTo(p.paymentAddress)
	if amount == 0 && p.currentAmount != Uninitialized {
		return nil, errors.Wrapf(ErrMissingOutput, "no output to %s", p.paymentAddress)
	}
	if err := payment.Verify(); err != nil {
		p.log.Warnf("Rejecting payment %d on channel %v: %v", payment.Sequence(), payment.Channel().ID(), err)
		return nil, errors.Wrap(ErrScriptVerification, err.Error())
	}
	if amount <= p.currentAmount {
		return nil, &StalePaymentError{Amount: amount, Current: p.currentAmount}
	}

	var snapshot *Snapshot
	if p.history != nil {
		signed, err := payment.Record()
		if err != nil {
			return nil, err
		}
		snapshot = &Snapshot{Sequence: payment.Sequence(), Amount: amount, Record: signed}
	}

	if p.channel == nil {
		p.channel = payment.Channel()
	}
	p.paymentTx = payment.Clone()
	p.currentAmount = amount
	if snapshot != nil {
		p.history.Add(snapshot)
	}
	p.log.Infof("Accepted payment %d on channel %v: %d sat", payment.Sequence(), p.channel.ID(), amount)
	return payment, nil
}

// SignRefund signs the provider's share of the refund in rec and keeps it.
// It does not depend on the accepted payments.
func (p *Provider) SignRefund(rec *encoding.RefundRecord) (*transaction.Refund, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	refund, err := transaction.RefundFromRecord(rec, p.network)
	if err != nil {
		return nil, errors.WithMessage(err, "decoding refund")
	}
	if err := p.checkChannel(refund.Channel()); err != nil {
		return nil, err
	}
	if refund.Timeout() < p.minRefundTimeout {
		return nil, errors.Wrapf(ErrRefundTimeout, "%d < %d", refund.Timeout(), p.minRefundTimeout)
	}
	if err := refund.Sign(p.account.Key()); err != nil {
		return nil, errors.WithMessage(err, "signing refund")
	}

	if p.channel == nil {
		p.channel = refund.Channel()
	}
	p.refund = refund.Clone()
	p.log.Infof("Signed refund on channel %v with timeout %d", p.channel.ID(), refund.Timeout())
	return refund, nil
}

// checkChannel ensures c is served by the provider: the provider key is the
// provider side of c and, once a record was accepted, c spends the same
// funding output.
func (p *Provider) checkChannel(c *transaction.ChannelParams) error {
	if !c.ProviderKey.IsEqual(p.account.Key().PubKey()) {
		return errors.Wrap(ErrChannelMismatch, "provider key is not part of the channel")
	}
	if p.channel != nil && c.ID() != p.channel.ID() {
		return errors.Wrapf(ErrChannelMismatch, "channel %v, serving %v", c.ID(), p.channel.ID())
	}
	return nil
}

// PaymentTx returns the fully signed transaction of the accepted payment,
// ready to be broadcast.
func (p *Provider) PaymentTx() (*wire.MsgTx, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.paymentTx == nil {
		return nil, ErrNoPaymentAccepted
	}
	return p.paymentTx.Tx(), nil
}

// Payment returns a copy of the accepted payment.
func (p *Provider) Payment() (*transaction.Payment, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.paymentTx == nil {
		return nil, ErrNoPaymentAccepted
	}
	return p.paymentTx.Clone(), nil
}

// Receipt returns a signed acknowledgment of the accepted payment.
func (p *Provider) Receipt() (*Receipt, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.paymentTx == nil {
		return nil, ErrNoPaymentAccepted
	}
	r := &Receipt{
		ChannelID: p.channel.ID(),
		Sequence:  p.paymentTx.Sequence(),
		Amount:    p.currentAmount,
	}
	acc, err := p.wallet.Unlock(p.account.Address())
	if err != nil {
		return nil, errors.Wrap(err, "unlocking channel key")
	}
	if err := r.sign(acc); err != nil {
		return nil, errors.Wrap(err, "signing receipt")
	}
	return r, nil
}

// Refund returns a copy of the last signed refund, or nil.
func (p *Provider) Refund() *transaction.Refund {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.refund == nil {
		return nil
	}
	return p.refund.Clone()
}

// History returns the accepted payments in acceptance order. It is nil unless
// the provider keeps a history.
func (p *Provider) History() []Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.history == nil {
		return nil
	}
	return p.history.Snapshots()
}

func (p *Provider) CurrentAmount() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.currentAmount
}

// Channel returns the channel the provider serves, or nil before the first
// payment or refund.
func (p *Provider) Channel() *transaction.ChannelParams {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.channel
}

func (p *Provider) Network() *chaincfg.Params { return p.network }

// PublicKey is the provider's channel key.
func (p *Provider) PublicKey() *btcec.PublicKey { return p.account.Key().PubKey() }

// Address is the off-chain address receipts are signed with.
func (p *Provider) Address() perunwallet.Address { return p.account.Address() }

func (p *Provider) PaymentAddress() btcutil.Address { return p.paymentAddress }

// PaymentKey returns the generated key of the payment address, or nil if the
// address was configured.
func (p *Provider) PaymentKey() *btcec.PrivateKey { return p.paymentKey }

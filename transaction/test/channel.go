package test

import (
	"math/rand"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"perun.network/perun-btc-paychan/transaction"
	wtest "perun.network/perun-btc-paychan/wallet/test"
)

// Network is the network used by test channels.
var Network = &chaincfg.RegressionNetParams

func NewRandomHash(rng *rand.Rand) chainhash.Hash {
	var h chainhash.Hash
	rng.Read(h[:])
	return h
}

func NewRandomOutpoint(rng *rand.Rand) wire.OutPoint {
	h := NewRandomHash(rng)
	return *wire.NewOutPoint(&h, uint32(rng.Intn(8)))
}

func NewRandomAddress(rng *rand.Rand) btcutil.Address {
	addr, err := wtest.NewRandomAccount(rng).PayToAddress(Network)
	if err != nil {
		panic(err)
	}
	return addr
}

// Channel bundles the parameters of a test channel with the private keys of
// both parties.
type Channel struct {
	Params         *transaction.ChannelParams
	PayerKey       *btcec.PrivateKey
	ProviderKey    *btcec.PrivateKey
	PaymentAddress btcutil.Address
	ChangeAddress  btcutil.Address
}

// NewRandomChannel creates a channel funded with value satoshis.
func NewRandomChannel(rng *rand.Rand, value int64) *Channel {
	payer := wtest.NewRandomKey(rng)
	provider := wtest.NewRandomKey(rng)
	params, err := transaction.NewChannelParams(Network, payer.PubKey(), provider.PubKey(), NewRandomOutpoint(rng), value)
	if err != nil {
		panic(err)
	}
	return &Channel{
		Params:         params,
		PayerKey:       payer,
		ProviderKey:    provider,
		PaymentAddress: NewRandomAddress(rng),
		ChangeAddress:  NewRandomAddress(rng),
	}
}

// NewPayment starts a fresh payment on the channel.
func (c *Channel) NewPayment() *transaction.Payment {
	p, err := transaction.NewPayment(transaction.PaymentParams{
		Channel:        c.Params,
		PaymentAddress: c.PaymentAddress,
		ChangeAddress:  c.ChangeAddress,
	})
	if err != nil {
		panic(err)
	}
	return p
}

// NewRefund creates an unsigned refund to the change address.
func (c *Channel) NewRefund(timeout uint32) *transaction.Refund {
	r, err := transaction.NewRefund(transaction.RefundParams{
		Channel:       c.Params,
		RefundAddress: c.ChangeAddress,
		Timeout:       timeout,
	})
	if err != nil {
		panic(err)
	}
	return r
}

package transaction

import (
	"bytes"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/pkg/errors"
	"perun.network/perun-btc-paychan/encoding"
)

// RefundFee is the fixed fee a refund pays.
const RefundFee int64 = 10000

type RefundParams struct {
	Channel       *ChannelParams
	RefundAddress btcutil.Address
	// Timeout is the lock time (block height or unix time) before which the
	// refund is invalid.
	Timeout uint32
	Tx      *wire.MsgTx
}

// Refund returns the whole funding value, minus RefundFee, to the payer once
// Timeout has passed. It is signed by the provider in advance and by the
// payer when it is needed.
type Refund struct {
	channel       *ChannelParams
	input         *multisigInput
	tx            *wire.MsgTx
	refundAddress btcutil.Address
	timeout       uint32
}

func NewRefund(params RefundParams) (*Refund, error) {
	c := params.Channel
	if c == nil {
		return nil, errors.New("channel params are nil")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if params.RefundAddress == nil {
		return nil, errors.Wrap(ErrInvalidRecord, "missing refund address")
	}
	if params.Timeout == 0 {
		return nil, ErrMissingTimeout
	}
	refundScript, err := txscript.PayToAddrScript(params.RefundAddress)
	if err != nil {
		return nil, errors.Wrap(err, "refund address script")
	}
	value := c.Funding.Value - RefundFee
	if value <= DustThreshold {
		return nil, errors.Wrapf(ErrInvalidAmount, "funding %d does not cover the refund fee", c.Funding.Value)
	}

	r := &Refund{
		channel:       c,
		input:         newMultisigInput(c),
		refundAddress: params.RefundAddress,
		timeout:       params.Timeout,
	}
	if params.Tx == nil {
		r.tx = wire.NewMsgTx(wire.TxVersion)
		// A final sequence disables the lock time.
		r.input.addInput(r.tx, wire.MaxTxInSequenceNum-1)
		r.tx.AddTxOut(wire.NewTxOut(value, refundScript))
		r.tx.LockTime = params.Timeout
		return r, nil
	}

	r.tx = params.Tx.Copy()
	if err := r.input.checkInput(r.tx); err != nil {
		return nil, err
	}
	if r.tx.TxIn[0].Sequence == wire.MaxTxInSequenceNum {
		return nil, errors.Wrap(ErrInvalidRecord, "final input sequence disables the timeout")
	}
	if r.tx.LockTime != params.Timeout {
		return nil, errors.Wrapf(ErrInvalidRecord, "lock time %d, expected timeout %d", r.tx.LockTime, params.Timeout)
	}
	if len(r.tx.TxOut) != 1 {
		return nil, errors.Wrapf(ErrInvalidRecord, "expected 1 output, got %d", len(r.tx.TxOut))
	}
	if _, err := outputTotal(r.tx, c.Funding.Value); err != nil {
		return nil, err
	}
	if r.tx.TxOut[0].Value != value {
		return nil, errors.Wrapf(ErrInvalidAmount, "refund pays %d, expected %d", r.tx.TxOut[0].Value, value)
	}
	if !bytes.Equal(r.tx.TxOut[0].PkScript, refundScript) {
		return nil, errors.Wrap(ErrInvalidRecord, "output does not pay to the refund address")
	}
	if err := r.input.load(r.tx); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Refund) Clone() *Refund {
	c := *r
	c.tx = r.tx.Copy()
	c.input = r.input.clone()
	return &c
}

// Sign adds the signature share of key. Signatures are deterministic, so
// signing twice with the same key leaves the refund unchanged.
func (r *Refund) Sign(key *btcec.PrivateKey) error {
	return r.input.sign(r.tx, key)
}

func (r *Refund) IsSignedBy(key *btcec.PublicKey) bool {
	return r.input.signed(key)
}

// Verify runs the funding input through the script engine. It only succeeds
// once both shares are present.
func (r *Refund) Verify() error {
	return r.input.verify(r.tx)
}

func (r *Refund) Tx() *wire.MsgTx {
	return r.tx.Copy()
}

func (r *Refund) Channel() *ChannelParams { return r.channel }

func (r *Refund) RefundAddress() btcutil.Address { return r.refundAddress }

func (r *Refund) Timeout() uint32 { return r.timeout }

func (r *Refund) Value() int64 { return r.tx.TxOut[0].Value }

func (r *Refund) Record() (*encoding.RefundRecord, error) {
	raw, err := encoding.EncodeTx(r.tx)
	if err != nil {
		return nil, errors.Wrap(err, "encoding transaction")
	}
	return &encoding.RefundRecord{
		PublicKeys:    r.channel.PublicKeys(),
		MultisigOut:   r.channel.fundingRecord(),
		RefundAddress: r.refundAddress.EncodeAddress(),
		Timeout:       r.timeout,
		Transaction:   raw,
	}, nil
}

func RefundFromRecord(rec *encoding.RefundRecord, net *chaincfg.Params) (*Refund, error) {
	c, err := channelFromRecord(rec.PublicKeys, rec.MultisigOut, net)
	if err != nil {
		return nil, err
	}
	refundAddress, err := decodeAddress(rec.RefundAddress, net)
	if err != nil {
		return nil, err
	}
	var tx *wire.MsgTx
	if rec.Transaction != "" {
		if tx, err = encoding.DecodeTx(rec.Transaction); err != nil {
			return nil, errors.Wrap(ErrInvalidRecord, err.Error())
		}
	}
	return NewRefund(RefundParams{
		Channel:       c,
		RefundAddress: refundAddress,
		Timeout:       rec.Timeout,
		Tx:            tx,
	})
}

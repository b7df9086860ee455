package transaction

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/pkg/errors"
	"perun.network/perun-btc-paychan/backend"
	"perun.network/perun-btc-paychan/encoding"
)

type PaymentParams struct {
	Channel        *ChannelParams
	PaymentAddress btcutil.Address
	ChangeAddress  btcutil.Address
	Paid           int64
	Sequence       uint32
	// Tx resumes a payment from an existing transaction. Nil starts a fresh
	// payment with a single change output of the full funding value.
	Tx *wire.MsgTx
}

// Payment is an incremental payment over the funding output. Each update
// moves more value to the payment address, pays the fee and returns the rest
// to the change address.
type Payment struct {
	channel        *ChannelParams
	input          *multisigInput
	tx             *wire.MsgTx
	paymentAddress btcutil.Address
	changeAddress  btcutil.Address
	paymentScript  []byte
	changeScript   []byte

	amount   int64
	paid     int64
	sequence uint32
}

func NewPayment(params PaymentParams) (*Payment, error) {
	c := params.Channel
	if c == nil {
		return nil, errors.New("channel params are nil")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if params.PaymentAddress == nil || params.ChangeAddress == nil {
		return nil, errors.Wrap(ErrInvalidRecord, "missing payment or change address")
	}
	paymentScript, err := txscript.PayToAddrScript(params.PaymentAddress)
	if err != nil {
		return nil, errors.Wrap(err, "payment address script")
	}
	changeScript, err := txscript.PayToAddrScript(params.ChangeAddress)
	if err != nil {
		return nil, errors.Wrap(err, "change address script")
	}

	p := &Payment{
		channel:        c,
		input:          newMultisigInput(c),
		paymentAddress: params.PaymentAddress,
		changeAddress:  params.ChangeAddress,
		paymentScript:  paymentScript,
		changeScript:   changeScript,
		paid:           params.Paid,
		sequence:       params.Sequence,
	}

	if params.Tx == nil {
		p.tx = wire.NewMsgTx(wire.TxVersion)
	} else {
		p.tx = params.Tx.Copy()
	}
	if len(p.tx.TxIn) == 0 {
		p.input.addInput(p.tx, p.sequence)
	}
	if err := p.input.checkInput(p.tx); err != nil {
		return nil, err
	}
	if p.tx.TxIn[0].Sequence != p.sequence {
		return nil, errors.Wrapf(ErrInvalidRecord, "input sequence %d, expected %d",
			p.tx.TxIn[0].Sequence, p.sequence)
	}
	if len(p.tx.TxOut) == 0 {
		p.tx.AddTxOut(wire.NewTxOut(c.Funding.Value, changeScript))
	}
	if err := p.input.load(p.tx); err != nil {
		return nil, err
	}

	if p.amount, err = outputTotal(p.tx, c.Funding.Value); err != nil {
		return nil, err
	}
	if p.paid < 0 || p.paid > p.amount {
		return nil, errors.Wrapf(ErrInvalidAmount, "paid %d outside [0, %d]", p.paid, p.amount)
	}
	return p, nil
}

// outputTotal sums the outputs of tx, which must be well formed and must not
// exceed the funding value.
func outputTotal(tx *wire.MsgTx, funding int64) (int64, error) {
	var total int64
	for i, out := range tx.TxOut {
		if out.Value < 0 || out.Value > btcutil.MaxSatoshi {
			return 0, errors.Wrapf(ErrInvalidAmount, "output %d value %d", i, out.Value)
		}
		total += out.Value
		if total > btcutil.MaxSatoshi {
			return 0, errors.Wrap(ErrInvalidAmount, "output total exceeds money supply")
		}
	}
	if total > funding {
		return 0, errors.Wrapf(ErrInvalidAmount, "outputs %d exceed funding %d", total, funding)
	}
	return total, nil
}

// UpdateValue pays delta more to the payment address and rebalances the fee
// at feePerKb. A remainder that would end up at or below DustThreshold is
// paid as well. All signatures are dropped, the payment must be signed again.
// On error the payment is left unchanged.
func (p *Payment) UpdateValue(delta, feePerKb int64) error {
	if p.paid >= p.amount {
		return errors.Wrapf(ErrChannelExhausted, "paid %d of %d", p.paid, p.amount)
	}
	if delta < 0 || delta > btcutil.MaxSatoshi {
		return errors.Wrapf(ErrInvalidAmount, "delta %d", delta)
	}
	if feePerKb < 0 {
		return errors.Wrapf(ErrInvalidAmount, "negative fee rate %d", feePerKb)
	}

	prev := p.snapshot()
	if p.amount-(p.paid+delta) <= DustThreshold {
		delta += DustThreshold
	}
	p.paid += delta
	p.sequence++
	if err := p.rebuild(feePerKb, prev.paid); err != nil {
		p.restore(prev)
		return err
	}
	return nil
}

// rebuild selects the fee for the current paid value. The output set
// determines the size and the size determines the fee, so selection repeats
// until the realized fee lies within the acceptance band for the final
// output set. A change output is dropped once it would not exceed
// DustThreshold; without it paid is re-targeted to everything but the fee,
// which lowers paid when it overshot the funding. Re-targeting never goes
// below minPaid, a higher fee rate than before fails instead.
func (p *Payment) rebuild(feePerKb, minPaid int64) error {
	funding := p.channel.Funding.Value
	withChange := true
	for i := 0; i < MaxFeeIterations; i++ {
		fee := FeeForSize(p.estimateSize(p.paid > 0, withChange), feePerKb)
		if fee >= funding {
			return errors.Wrapf(ErrFeeConvergence, "fee %d consumes funding %d", fee, funding)
		}
		var change int64
		if withChange {
			change = funding - fee - p.paid
			if change <= DustThreshold {
				withChange = false
				continue
			}
		} else {
			p.paid = funding - fee
			if p.paid < minPaid {
				return errors.Wrapf(ErrFeeConvergence, "fee %d at %d sat/kB lowers paid below %d", fee, feePerKb, minPaid)
			}
		}
		size := p.estimateSize(p.paid > 0, withChange)
		if FeeWithinBand(funding-p.paid-change, size, feePerKb) {
			p.setOutputs(change)
			return nil
		}
	}
	return errors.Wrapf(ErrFeeConvergence, "no fee within %d rounds at %d sat/kB", MaxFeeIterations, feePerKb)
}

func (p *Payment) estimateSize(withPayment, withChange bool) int {
	var scripts [][]byte
	if withPayment {
		scripts = append(scripts, p.paymentScript)
	}
	if withChange {
		scripts = append(scripts, p.changeScript)
	}
	return estimateSize(scripts...)
}

func (p *Payment) setOutputs(change int64) {
	p.tx.TxOut = nil
	if p.paid > 0 {
		p.tx.AddTxOut(wire.NewTxOut(p.paid, p.paymentScript))
	}
	if change > 0 {
		p.tx.AddTxOut(wire.NewTxOut(change, p.changeScript))
	}
	p.amount = p.paid + change
	p.tx.TxIn[0].Sequence = p.sequence
	p.input.clear(p.tx)
}

type paymentState struct {
	tx       *wire.MsgTx
	sigs     [2][]byte
	amount   int64
	paid     int64
	sequence uint32
}

func (p *Payment) snapshot() paymentState {
	return paymentState{
		tx:       p.tx.Copy(),
		sigs:     p.input.copySigs(),
		amount:   p.amount,
		paid:     p.paid,
		sequence: p.sequence,
	}
}

func (p *Payment) restore(s paymentState) {
	p.tx = s.tx
	p.input.sigs = s.sigs
	p.amount = s.amount
	p.paid = s.paid
	p.sequence = s.sequence
}

// Clone returns a deep copy of the payment. Channel parameters and addresses
// are shared.
func (p *Payment) Clone() *Payment {
	c := *p
	c.tx = p.tx.Copy()
	c.input = p.input.clone()
	return &c
}

// Sign adds the signature share of key. key must be one of the channel keys.
func (p *Payment) Sign(key *btcec.PrivateKey) error {
	return p.input.sign(p.tx, key)
}

// IsSignedBy reports whether the share of key is present.
func (p *Payment) IsSignedBy(key *btcec.PublicKey) bool {
	return p.input.signed(key)
}

// Verify runs the funding input through the script engine.
func (p *Payment) Verify() error {
	return p.input.verify(p.tx)
}

// ValueTo returns the value of the output paying to addr, or 0.
func (p *Payment) ValueTo(addr btcutil.Address) int64 {
	var value int64
	for _, out := range p.tx.TxOut {
		outAddr := backend.PkScriptAddress(out.PkScript, p.channel.Network)
		if outAddr != nil && outAddr.EncodeAddress() == addr.EncodeAddress() {
			value = out.Value
		}
	}
	return value
}

// Tx returns a copy of the transaction.
func (p *Payment) Tx() *wire.MsgTx {
	return p.tx.Copy()
}

func (p *Payment) Channel() *ChannelParams { return p.channel }

func (p *Payment) PaymentAddress() btcutil.Address { return p.paymentAddress }

func (p *Payment) ChangeAddress() btcutil.Address { return p.changeAddress }

// Amount is the value of all outputs, i.e. the funding value minus the fee.
func (p *Payment) Amount() int64 { return p.amount }

// Paid is the value directed to the payment address so far.
func (p *Payment) Paid() int64 { return p.paid }

// Sequence counts the updates of the payment. It is stored in the input
// sequence field but carries no replacement semantics on the network.
func (p *Payment) Sequence() uint32 { return p.sequence }

func (p *Payment) Fee() int64 { return p.channel.Funding.Value - p.amount }

// Size estimates the size of the fully signed transaction.
func (p *Payment) Size() int {
	scripts := make([][]byte, 0, len(p.tx.TxOut))
	for _, out := range p.tx.TxOut {
		scripts = append(scripts, out.PkScript)
	}
	return estimateSize(scripts...)
}

func (p *Payment) Record() (*encoding.PaymentRecord, error) {
	raw, err := encoding.EncodeTx(p.tx)
	if err != nil {
		return nil, errors.Wrap(err, "encoding transaction")
	}
	return &encoding.PaymentRecord{
		PublicKeys:     p.channel.PublicKeys(),
		MultisigOut:    p.channel.fundingRecord(),
		Amount:         p.amount,
		Paid:           p.paid,
		Sequence:       p.sequence,
		PaymentAddress: p.paymentAddress.EncodeAddress(),
		ChangeAddress:  p.changeAddress.EncodeAddress(),
		Transaction:    raw,
	}, nil
}

// PaymentFromRecord resumes a payment from its record. Signature shares in
// the transaction are kept.
func PaymentFromRecord(rec *encoding.PaymentRecord, net *chaincfg.Params) (*Payment, error) {
	c, err := channelFromRecord(rec.PublicKeys, rec.MultisigOut, net)
	if err != nil {
		return nil, err
	}
	paymentAddress, err := decodeAddress(rec.PaymentAddress, net)
	if err != nil {
		return nil, err
	}
	changeAddress, err := decodeAddress(rec.ChangeAddress, net)
	if err != nil {
		return nil, err
	}
	var tx *wire.MsgTx
	if rec.Transaction != "" {
		if tx, err = encoding.DecodeTx(rec.Transaction); err != nil {
			return nil, errors.Wrap(ErrInvalidRecord, err.Error())
		}
	}
	p, err := NewPayment(PaymentParams{
		Channel:        c,
		PaymentAddress: paymentAddress,
		ChangeAddress:  changeAddress,
		Paid:           rec.Paid,
		Sequence:       rec.Sequence,
		Tx:             tx,
	})
	if err != nil {
		return nil, err
	}
	if p.amount != rec.Amount {
		return nil, errors.Wrapf(ErrInvalidAmount, "record amount %d, outputs %d", rec.Amount, p.amount)
	}
	return p, nil
}

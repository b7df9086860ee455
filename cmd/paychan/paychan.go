package main

import (
	"encoding/hex"

	"github.com/go-errors/errors"
	"perun.network/perun-btc-paychan/channel"
	"perun.network/perun-btc-paychan/encoding"
	"perun.network/perun-btc-paychan/transaction"
)

// paychan serves all channels of one provider key. Each channel gets its own
// provider, restored from the state file by replaying its records.
type paychan struct {
	cfg      channel.Config
	registry channel.Registry
	state    *state
}

func newPaychan(cfg channel.Config, s *state) (*paychan, error) {
	pc := &paychan{
		cfg:      cfg,
		registry: channel.NewRegistry(),
		state:    s,
	}
	for _, id := range s.ids() {
		cs := s.Channels[id]
		p, err := channel.NewProvider(cfg)
		if err != nil {
			return nil, err
		}
		if cs.Refund != nil {
			if _, err := p.SignRefund(cs.Refund); err != nil {
				return nil, errors.Errorf("Could not restore refund of channel %s: %v", id, err)
			}
		}
		if cs.Payment != nil {
			if _, err := p.ValidatePayment(cs.Payment); err != nil {
				return nil, errors.Errorf("Could not restore payment of channel %s: %v", id, err)
			}
		}
		c := p.Channel()
		if c == nil {
			continue
		}
		if c.ID().String() != id {
			return nil, errors.Errorf("State of channel %s belongs to channel %v", id, c.ID())
		}
		if err := pc.registry.Set(c.ID(), p); err != nil {
			return nil, err
		}
	}
	return pc, nil
}

// provider returns the provider of channel c, creating it on first use.
func (pc *paychan) provider(c *transaction.ChannelParams) (*channel.Provider, error) {
	if p, ok := pc.registry.Get(c.ID()); ok {
		return p, nil
	}
	p, err := channel.NewProvider(pc.cfg)
	if err != nil {
		return nil, err
	}
	return p, pc.registry.Set(c.ID(), p)
}

// lookup finds a registered channel by its hex ID. An empty ID selects the
// only channel, if there is exactly one.
func (pc *paychan) lookup(id string) (*channel.Provider, error) {
	ids := pc.registry.IDs()
	if id == "" {
		if len(ids) != 1 {
			return nil, errors.Errorf("Serving %d channels, a channel ID is required", len(ids))
		}
		p, _ := pc.registry.Get(ids[0])
		return p, nil
	}
	for _, cid := range ids {
		if cid.String() == id {
			p, _ := pc.registry.Get(cid)
			return p, nil
		}
	}
	return nil, errors.Errorf("Unknown channel %s", id)
}

func (pc *paychan) validate(rec *encoding.PaymentRecord) (*channel.Receipt, error) {
	payment, err := transaction.PaymentFromRecord(rec, pc.cfg.Network)
	if err != nil {
		return nil, err
	}
	p, err := pc.provider(payment.Channel())
	if err != nil {
		return nil, err
	}
	accepted, err := p.ValidatePayment(rec)
	if err != nil {
		return nil, err
	}
	signed, err := accepted.Record()
	if err != nil {
		return nil, err
	}
	pc.state.channel(accepted.Channel().ID().String()).Payment = signed
	return p.Receipt()
}

func (pc *paychan) signRefund(rec *encoding.RefundRecord) (*encoding.RefundRecord, error) {
	refund, err := transaction.RefundFromRecord(rec, pc.cfg.Network)
	if err != nil {
		return nil, err
	}
	p, err := pc.provider(refund.Channel())
	if err != nil {
		return nil, err
	}
	signed, err := p.SignRefund(rec)
	if err != nil {
		return nil, err
	}
	signedRec, err := signed.Record()
	if err != nil {
		return nil, err
	}
	pc.state.channel(signed.Channel().ID().String()).Refund = signedRec
	return signedRec, nil
}

// settle returns the raw transaction of the accepted payment of a channel.
func (pc *paychan) settle(id string) (string, error) {
	p, err := pc.lookup(id)
	if err != nil {
		return "", err
	}
	tx, err := p.PaymentTx()
	if err != nil {
		return "", err
	}
	return encoding.EncodeTx(tx)
}

type channelStatus struct {
	ChannelID     string `json:"channelId"`
	Funding       int64  `json:"funding"`
	CurrentAmount int64  `json:"currentAmount"`
	Sequence      uint32 `json:"sequence"`
	RefundTimeout uint32 `json:"refundTimeout,omitempty"`
}

func (pc *paychan) status() []channelStatus {
	var statuses []channelStatus
	for _, id := range pc.state.ids() {
		p, err := pc.lookup(id)
		if err != nil {
			continue
		}
		st := channelStatus{
			ChannelID:     id,
			Funding:       p.Channel().Funding.Value,
			CurrentAmount: p.CurrentAmount(),
		}
		if payment, err := p.Payment(); err == nil {
			st.Sequence = payment.Sequence()
		}
		if refund := p.Refund(); refund != nil {
			st.RefundTimeout = refund.Timeout()
		}
		statuses = append(statuses, st)
	}
	return statuses
}

type receiptJSON struct {
	ChannelID string `json:"channelId"`
	Sequence  uint32 `json:"sequence"`
	Amount    int64  `json:"amount"`
	Signature string `json:"signature"`
}

func newReceiptJSON(r *channel.Receipt) receiptJSON {
	return receiptJSON{
		ChannelID: r.ChannelID.String(),
		Sequence:  r.Sequence,
		Amount:    r.Amount,
		Signature: hex.EncodeToString(r.Sig),
	}
}

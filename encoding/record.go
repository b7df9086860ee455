package encoding

// OutPointRecord references the funding output of a channel.
type OutPointRecord struct {
	TxID     string `json:"txid"`
	Index    uint32 `json:"index"`
	Script   string `json:"script"`
	Satoshis int64  `json:"satoshis"`
}

// PaymentRecord is the structured form of a payment exchanged between payer
// and provider. Transports and stores must carry it unmodified.
type PaymentRecord struct {
	// PublicKeys holds the hex encoded compressed keys, payer then provider.
	PublicKeys     []string       `json:"publicKeys"`
	MultisigOut    OutPointRecord `json:"multisigOut"`
	Amount         int64          `json:"amount"`
	Paid           int64          `json:"paid"`
	Sequence       uint32         `json:"sequence"`
	PaymentAddress string         `json:"paymentAddress"`
	ChangeAddress  string         `json:"changeAddress"`
	// Transaction is the hex encoded raw transaction.
	Transaction string `json:"transaction"`
}

// RefundRecord is the structured form of a refund.
type RefundRecord struct {
	PublicKeys    []string       `json:"publicKeys"`
	MultisigOut   OutPointRecord `json:"multisigOut"`
	RefundAddress string         `json:"refundAddress"`
	// Timeout is the lock time after which the refund can be broadcast.
	Timeout     uint32 `json:"timeout"`
	Transaction string `json:"transaction"`
}

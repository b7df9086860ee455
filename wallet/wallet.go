package wallet

import (
	"errors"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"perun.network/go-perun/wallet"
	"polycry.pt/poly-go/sync"
)

// EphemeralWallet keeps channel accounts in memory only.
type EphemeralWallet struct {
	lock     sync.Mutex
	accounts map[string]*Account
}

var _ wallet.Wallet = (*EphemeralWallet)(nil)

func (e *EphemeralWallet) Unlock(address wallet.Address) (wallet.Account, error) {
	addr, ok := address.(*Address)
	if !ok {
		return nil, errors.New("address is not of type Address")
	}
	e.lock.Lock()
	defer e.lock.Unlock()
	account, ok := e.accounts[addr.String()]
	if !ok {
		return nil, errors.New("account not found")
	}
	return account, nil
}

func (e *EphemeralWallet) LockAll() {}

func (e *EphemeralWallet) IncrementUsage(address wallet.Address) {}

func (e *EphemeralWallet) DecrementUsage(address wallet.Address) {}

func (e *EphemeralWallet) AddNewAccount() (*Account, error) {
	acc, err := NewAccount()
	if err != nil {
		return nil, err
	}
	return acc, e.add(acc)
}

// ImportKey adds an account for an existing key, e.g. a provider key loaded
// from configuration.
func (e *EphemeralWallet) ImportKey(key *secp256k1.PrivateKey) (*Account, error) {
	acc := NewAccountFromKey(key)
	return acc, e.add(acc)
}

func (e *EphemeralWallet) add(acc *Account) error {
	e.lock.Lock()
	defer e.lock.Unlock()
	if _, ok := e.accounts[acc.Address().String()]; ok {
		return errors.New("account already exists")
	}
	e.accounts[acc.Address().String()] = acc
	return nil
}

func NewEphemeralWallet() *EphemeralWallet {
	return &EphemeralWallet{
		accounts: make(map[string]*Account),
	}
}

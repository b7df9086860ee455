package backend

import (
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/pkg/errors"
)

// ErrUnknownNetwork is returned for network names without chain parameters.
var ErrUnknownNetwork = errors.New("unknown network")

var networks = map[string]*chaincfg.Params{
	chaincfg.MainNetParams.Name:       &chaincfg.MainNetParams,
	chaincfg.TestNet3Params.Name:      &chaincfg.TestNet3Params,
	chaincfg.RegressionNetParams.Name: &chaincfg.RegressionNetParams,
	chaincfg.SimNetParams.Name:        &chaincfg.SimNetParams,
	chaincfg.SigNetParams.Name:        &chaincfg.SigNetParams,
	"testnet":                         &chaincfg.TestNet3Params,
}

// Network looks up chain parameters by name ("mainnet", "testnet3", "regtest",
// "simnet", "signet"). There is no implicit default network.
func Network(name string) (*chaincfg.Params, error) {
	net, ok := networks[name]
	if !ok {
		return nil, errors.Wrap(ErrUnknownNetwork, name)
	}
	return net, nil
}

package main

import (
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/go-errors/errors"
	"github.com/jessevdk/go-flags"
	"perun.network/perun-btc-paychan/backend"
	"perun.network/perun-btc-paychan/channel"
	"perun.network/perun-btc-paychan/wallet"
)

const (
	defaultConfigFile = "~/.paychan/paychan.conf"
	defaultStateFile  = "~/.paychan/state.json"
)

type config struct {
	Network          string `long:"network" description:"Bitcoin network: mainnet, testnet3, regtest, simnet or signet"`
	PaymentAddress   string `long:"paymentaddress" description:"Address receiving the payments, defaults to the address of the channel key"`
	Key              string `long:"key" description:"WIF encoded channel key of the provider"`
	StateFile        string `long:"statefile" description:"Path to the channel state file"`
	MinRefundTimeout uint32 `long:"minrefundtimeout" description:"Earliest refund lock time that is signed"`
	Debug            bool   `long:"debug" description:"Log debug messages"`
}

// loadConfig reads the INI config file at path. A missing file is only an
// error if the path was given explicitly.
func loadConfig(path string, explicit bool) (*config, error) {
	cfg := config{
		StateFile: defaultStateFile,
	}

	path = cleanAndExpandPath(path)
	if _, err := os.Stat(path); err == nil || explicit {
		if err := flags.IniParse(path, &cfg); err != nil {
			return nil, errors.Errorf("Could not read config %s: %v", path, err)
		}
	}

	cfg.StateFile = cleanAndExpandPath(cfg.StateFile)
	return &cfg, nil
}

func (c *config) network() (*chaincfg.Params, error) {
	if c.Network == "" {
		return nil, channel.ErrNoNetwork
	}
	return backend.Network(c.Network)
}

func (c *config) channelKey() (*btcec.PrivateKey, error) {
	if c.Key == "" {
		return nil, errors.New("No channel key configured, create one with keygen")
	}
	wif, err := btcutil.DecodeWIF(c.Key)
	if err != nil {
		return nil, errors.Errorf("Could not decode channel key: %v", err)
	}
	return wif.PrivKey, nil
}

// providerConfig turns the file config into the config of a channel provider.
func (c *config) providerConfig(logger channel.Logger) (channel.Config, error) {
	net, err := c.network()
	if err != nil {
		return channel.Config{}, err
	}
	key, err := c.channelKey()
	if err != nil {
		return channel.Config{}, err
	}
	paymentAddress := c.PaymentAddress
	if paymentAddress == "" {
		addr, err := wallet.NewAccountFromKey(key).PayToAddress(net)
		if err != nil {
			return channel.Config{}, err
		}
		paymentAddress = addr.EncodeAddress()
	}
	return channel.Config{
		Network:          net,
		PaymentAddress:   paymentAddress,
		Key:              key,
		MinRefundTimeout: c.MinRefundTimeout,
		Logger:           logger,
	}, nil
}

// cleanAndExpandPath expands environment variables and leading ~ in the
// passed path, cleans the result, and returns it.
func cleanAndExpandPath(path string) string {
	if path == "" {
		return ""
	}

	// Expand initial ~ to OS specific home directory.
	if strings.HasPrefix(path, "~") {
		var homeDir string
		u, err := user.Current()
		if err == nil {
			homeDir = u.HomeDir
		} else {
			homeDir = os.Getenv("HOME")
		}

		path = strings.Replace(path, "~", homeDir, 1)
	}

	return filepath.Clean(os.ExpandEnv(path))
}

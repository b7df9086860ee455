package main

import (
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"os"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/go-errors/errors"
	"github.com/jessevdk/go-flags"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	"perun.network/perun-btc-paychan/encoding"
	"perun.network/perun-btc-paychan/wallet"
)

var (
	// Commit stores the current commit hash of this build. This should be set using -ldflags during compilation.
	commit string
	// Version stores the version string of this build. This should be set using -ldflags during compilation.
	version string
	// Stores the date of this build. This should be set using -ldflags during compilation.
	date string
)

// paychanMain is the true entry point for paychan. This is required since defers
// created in the top-level scope of a main method aren't executed if os.Exit() is called.
func paychanMain() error {
	app := cli.NewApp()
	app.Name = "paychan"
	app.Usage = "provider side of unidirectional bitcoin payment channels"
	app.Version = version

	cli.VersionPrinter = func(c *cli.Context) {
		fmt.Printf("version=%s commit=%s date=%s\n", version, commit, date)
	}

	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config",
			Value: defaultConfigFile,
			Usage: "path to the INI config file",
		},
		cli.StringFlag{
			Name:  "network",
			Usage: "overrides the network of the config file",
		},
		cli.BoolFlag{
			Name:  "debug",
			Usage: "log debug messages",
		},
	}

	app.Commands = []cli.Command{
		{
			Name:   "keygen",
			Usage:  "generate a channel key",
			Action: keygen,
		},
		{
			Name:      "sign-refund",
			ArgsUsage: "<refund.json|->",
			Usage:     "sign the refund of a channel and print it",
			Action:    signRefund,
		},
		{
			Name:      "validate",
			ArgsUsage: "<payment.json|->",
			Usage:     "validate a payment and print the receipt",
			Action:    validate,
		},
		{
			Name:      "settle",
			ArgsUsage: "[channel id]",
			Usage:     "print the raw transaction of the accepted payment",
			Action:    settle,
		},
		{
			Name:   "status",
			Usage:  "print the state of all channels",
			Action: status,
		},
	}

	return app.Run(os.Args)
}

func setup(c *cli.Context) (*config, error) {
	cfg, err := loadConfig(c.GlobalString("config"), c.GlobalIsSet("config"))
	if err != nil {
		return nil, err
	}
	if network := c.GlobalString("network"); network != "" {
		cfg.Network = network
	}
	if c.GlobalBool("debug") || cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}
	log.Debugf("Using network %q and state file %s", cfg.Network, cfg.StateFile)
	return cfg, nil
}

// open restores all channels from the state file.
func open(c *cli.Context) (*config, *paychan, error) {
	cfg, err := setup(c)
	if err != nil {
		return nil, nil, err
	}
	pcfg, err := cfg.providerConfig(log.StandardLogger())
	if err != nil {
		return nil, nil, err
	}
	s, err := readState(cfg.StateFile)
	if err != nil {
		return nil, nil, err
	}
	pc, err := newPaychan(pcfg, s)
	if err != nil {
		return nil, nil, err
	}
	return cfg, pc, nil
}

func keygen(c *cli.Context) error {
	cfg, err := setup(c)
	if err != nil {
		return err
	}
	net, err := cfg.network()
	if err != nil {
		return err
	}
	acc, err := wallet.NewAccount()
	if err != nil {
		return err
	}
	wif, err := btcutil.NewWIF(acc.Key(), net, true)
	if err != nil {
		return err
	}
	addr, err := acc.PayToAddress(net)
	if err != nil {
		return err
	}
	return printJSON(struct {
		Key       string `json:"key"`
		PublicKey string `json:"publicKey"`
		Address   string `json:"address"`
	}{
		Key:       wif.String(),
		PublicKey: encoding.EncodePubKey(acc.Key().PubKey()),
		Address:   addr.EncodeAddress(),
	})
}

func signRefund(c *cli.Context) error {
	var rec encoding.RefundRecord
	if err := readRecord(c.Args().First(), &rec); err != nil {
		return err
	}
	cfg, pc, err := open(c)
	if err != nil {
		return err
	}
	signed, err := pc.signRefund(&rec)
	if err != nil {
		return errors.Errorf("Could not sign refund: %v", err)
	}
	if err := pc.state.write(cfg.StateFile); err != nil {
		return err
	}
	return printJSON(signed)
}

func validate(c *cli.Context) error {
	var rec encoding.PaymentRecord
	if err := readRecord(c.Args().First(), &rec); err != nil {
		return err
	}
	cfg, pc, err := open(c)
	if err != nil {
		return err
	}
	receipt, err := pc.validate(&rec)
	if err != nil {
		return errors.Errorf("Could not validate payment: %v", err)
	}
	if err := pc.state.write(cfg.StateFile); err != nil {
		return err
	}
	return printJSON(newReceiptJSON(receipt))
}

func settle(c *cli.Context) error {
	_, pc, err := open(c)
	if err != nil {
		return err
	}
	raw, err := pc.settle(c.Args().First())
	if err != nil {
		return errors.Errorf("Could not settle: %v", err)
	}
	fmt.Println(raw)
	return nil
}

func status(c *cli.Context) error {
	_, pc, err := open(c)
	if err != nil {
		return err
	}
	return printJSON(pc.status())
}

// readRecord decodes the JSON record in file, "-" reads standard input.
func readRecord(file string, v interface{}) error {
	var r io.Reader
	switch file {
	case "":
		return errors.New("Missing record file")
	case "-":
		r = os.Stdin
	default:
		f, err := os.Open(file)
		if err != nil {
			return errors.Errorf("Could not open %s: %v", file, err)
		}
		defer f.Close()
		r = f
	}
	b, err := ioutil.ReadAll(r)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return errors.Errorf("Could not decode record: %v", err)
	}
	return nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	// Call the "real" main in a nested manner so the defers will properly
	// be executed in the case of a graceful shutdown.
	if err := paychanMain(); err != nil {
		if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
		} else {
			log.WithError(err).Println("Failed running paychan.")
		}
		os.Exit(1)
	}
}

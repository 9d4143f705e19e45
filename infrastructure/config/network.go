package config

import (
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
	"github.com/ulordnet/ulordd/chaincfg"
)

// NetworkFlags holds the network configuration, that is which network is selected.
type NetworkFlags struct {
	TestNet        bool `long:"testnet" description:"Use the test network"`
	RegressionTest bool `long:"regtest" description:"Use the regression test network"`
	DevNet         bool `long:"devnet" description:"Use the development test network"`
	UnitTest       bool `long:"unittest" description:"Use the unit test network"`

	ActiveNetParams *chaincfg.Params `no-flag:"true"`
}

// ResolveNetwork parses the network command line argument and sets ActiveNetParams accordingly.
// It returns error if more than one network was selected, nil otherwise.
func (networkFlags *NetworkFlags) ResolveNetwork(parser *flags.Parser) error {
	// Default value is main-net.
	networkFlags.ActiveNetParams = chaincfg.MainNetParams()

	numNets := 0
	if networkFlags.TestNet {
		numNets++
		networkFlags.ActiveNetParams = chaincfg.TestNetParams()
	}
	if networkFlags.RegressionTest {
		numNets++
		networkFlags.ActiveNetParams = chaincfg.RegressionNetParams()
	}
	if networkFlags.DevNet {
		numNets++
		networkFlags.ActiveNetParams = chaincfg.DevNetParams()
	}
	if networkFlags.UnitTest {
		numNets++
		networkFlags.ActiveNetParams = chaincfg.UnitTestParams()
	}
	if numNets > 1 {
		message := "Multiple networks parameters (testnet, regtest, devnet, unittest) cannot be used " +
			"together. Please choose only one network"
		err := errors.New(message)
		fmt.Fprintln(os.Stderr, err)
		if parser != nil {
			parser.WriteHelp(os.Stderr)
		}
		return err
	}

	return nil
}

// NetParams returns the ActiveNetParams
func (networkFlags *NetworkFlags) NetParams() *chaincfg.Params {
	return networkFlags.ActiveNetParams
}

package main

import (
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v6"
	"github.com/iov-one/custody/errors"
)

// configuration of the daemon, read from the environment. Flags given on
// the command line take precedence.
type configuration struct {
	Home     string `env:"WALLETD_HOME"`
	HTTP     string `env:"WALLETD_HTTP" envDefault:":8000"`
	LogLevel string `env:"WALLETD_LOG_LEVEL" envDefault:"info"`
	Debug    bool   `env:"WALLETD_DEBUG" envDefault:"false"`
	Wallet   string `env:"WALLETD_WALLET" envDefault:"wallet"`
}

func loadConfiguration() (configuration, error) {
	var c configuration
	if err := env.Parse(&c); err != nil {
		return c, errors.Wrapf(errors.ErrInput, "environment: %s", err)
	}
	if c.Home == "" {
		c.Home = filepath.Join(os.ExpandEnv("$HOME"), ".walletd")
	}
	return c, nil
}

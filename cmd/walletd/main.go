package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/cmd/walletd/app"
	"github.com/iov-one/custody/cmd/walletd/handlers"
	"github.com/iov-one/custody/crypto"
	"github.com/iov-one/custody/errors"
	"github.com/tendermint/tendermint/libs/log"
)

func helpMessage() {
	fmt.Fprintln(os.Stderr, "walletd")
	fmt.Fprintln(os.Stderr, "        Multi-signature wallet daemon")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "help    Print this message")
	fmt.Fprintln(os.Stderr, "init    Generate owner keys and the genesis file")
	fmt.Fprintln(os.Stderr, "keygen  Generate a key")
	fmt.Fprintln(os.Stderr, "start   Run the HTTP server")
	fmt.Fprintln(os.Stderr, "version Print the app version")
	fmt.Fprintln(os.Stderr, "")
	flag.PrintDefaults()
}

func main() {
	conf, err := loadConfiguration()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	flag.StringVar(&conf.Home, "home", conf.Home, "directory to store files under")
	flag.StringVar(&conf.LogLevel, "log_level", conf.LogLevel, "log level: debug, info, error or none")
	flag.Parse()

	logger, err := newLogger(conf.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Missing command:")
		helpMessage()
		os.Exit(1)
	}

	cmd := flag.Arg(0)
	rest := flag.Args()[1:]

	switch cmd {
	case "help":
		helpMessage()
	case "init":
		err = initCmd(logger, conf, rest)
	case "keygen":
		err = keygenCmd(rest)
	case "start":
		err = startCmd(logger, conf, rest)
	case "version":
		fmt.Println(custody.Version())
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		helpMessage()
		os.Exit(1)
	}
	if err != nil {
		logger.Error("command failed", "cmd", cmd, "err", err)
		os.Exit(1)
	}
}

func newLogger(level string) (log.Logger, error) {
	logger := log.NewTMLogger(log.NewSyncWriter(os.Stdout)).With("module", "walletd")
	opt, err := log.AllowLevel(level)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	return log.NewFilter(logger, opt), nil
}

func initCmd(logger log.Logger, conf configuration, args []string) error {
	params := app.DefaultInitParams
	var required uint
	fl := flag.NewFlagSet("init", flag.ExitOnError)
	fl.IntVar(&params.Owners, "owners", params.Owners, "number of owner keys to generate")
	fl.UintVar(&required, "required", uint(params.Required), "confirmations required to execute a transaction")
	fl.Uint64Var(&params.Funds, "funds", params.Funds, "native amount given to every owner")
	fl.StringVar(&params.TokenName, "token_name", params.TokenName, "name of the token, empty for none")
	fl.StringVar(&params.TokenSymbol, "token_symbol", params.TokenSymbol, "symbol of the token, empty for none")
	fl.Uint64Var(&params.Supply, "token_supply", params.Supply, "token supply in whole tokens, minted to the first owner")
	if err := fl.Parse(args); err != nil {
		return err
	}
	if required > math.MaxUint32 {
		return errors.Wrapf(errors.ErrInput, "required confirmations %d out of range", required)
	}
	params.Required = uint32(required)

	opts, keys, err := app.GenInitOptions(params)
	if err != nil {
		return err
	}
	if err := app.WriteGenesis(conf.Home, opts, keys); err != nil {
		return err
	}
	for i, k := range keys {
		logger.Info("Generated owner key", "owner", i, "address", k.PublicKey().Address())
	}
	logger.Info("Generated genesis file", "path", app.GenesisFile(conf.Home))
	return nil
}

func keygenCmd(args []string) error {
	fl := flag.NewFlagSet("keygen", flag.ExitOnError)
	out := fl.String("out", "", "file to write the key to, print it if empty")
	if err := fl.Parse(args); err != nil {
		return err
	}
	key := crypto.GenPrivKeyEd25519()
	if *out != "" {
		if err := app.WriteKey(*out, key); err != nil {
			return err
		}
	} else {
		fmt.Printf("seed    %x\n", key.Seed())
	}
	fmt.Printf("pubkey  %s\n", key.PublicKey())
	fmt.Printf("address %s\n", key.PublicKey().Address())
	return nil
}

func startCmd(logger log.Logger, conf configuration, args []string) error {
	fl := flag.NewFlagSet("start", flag.ExitOnError)
	fl.StringVar(&conf.HTTP, "http", conf.HTTP, "address the HTTP server listens on")
	fl.BoolVar(&conf.Debug, "debug", conf.Debug, "return internal error details and stack traces")
	fl.StringVar(&conf.Wallet, "wallet", conf.Wallet, "ID of the wallet to serve")
	if err := fl.Parse(args); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = custody.WithLogger(ctx, logger)

	a, err := app.GenerateApp(ctx, conf.Home, conf.Wallet, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	srv := &http.Server{
		Addr:              conf.HTTP,
		Handler:           handlers.NewRouter(a, logger, conf.Debug),
		ReadHeaderTimeout: 10 * time.Second,
	}
	failed := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", "bind", conf.HTTP, "wallet", a.Wallet.ID(), "address", a.Wallet.Address())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			failed <- err
		}
	}()

	select {
	case err := <-failed:
		return errors.Wrap(err, "http server")
	case <-ctx.Done():
	}
	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

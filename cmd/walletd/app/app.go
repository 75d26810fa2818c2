package app

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/iov-one/custody"
	custodyapp "github.com/iov-one/custody/app"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/store/iavl"
	"github.com/iov-one/custody/x/cash"
	"github.com/iov-one/custody/x/token"
	"github.com/iov-one/custody/x/wallet"
	"github.com/tendermint/tendermint/libs/log"
)

// Application is the state served by walletd: a wallet together with the
// native ledger and the token it moves funds on.
type Application struct {
	Host   *custodyapp.Host
	Cash   *cash.Controller
	Token  *token.Contract
	Wallet *wallet.Wallet
	Events *wallet.Broadcaster

	store custody.CommitKVStore
}

// GenesisFile returns the path of the genesis file within home.
func GenesisFile(home string) string {
	return filepath.Join(home, "config", "genesis.json")
}

// DataDir returns the directory of the database within home.
func DataDir(home string) string {
	return filepath.Join(home, "data")
}

// GenerateApp opens the database in home, loading the genesis file if the
// database is new, and returns the wallet with given ID.
func GenerateApp(ctx context.Context, home string, walletID string, logger log.Logger) (*Application, error) {
	if err := os.MkdirAll(DataDir(home), 0700); err != nil {
		return nil, errors.Wrap(err, "create data directory")
	}
	db, err := iavl.NewCommitStore(DataDir(home), "walletd")
	if err != nil {
		return nil, err
	}
	host := custodyapp.NewHost(db)

	if v := db.LatestVersion(); v.Version == 0 {
		opts, err := ReadGenesis(GenesisFile(home))
		if err != nil {
			db.Close()
			return nil, err
		}
		if err := InitGenesis(ctx, host, opts); err != nil {
			db.Close()
			return nil, errors.Wrap(err, "genesis")
		}
		logger.Info("Loaded genesis", "path", GenesisFile(home))
	} else {
		logger.Info("Found database", "version", v.Version, "hash", v.Hash)
	}

	a, err := Load(ctx, host, walletID)
	if err != nil {
		db.Close()
		return nil, err
	}
	a.store = db
	return a, nil
}

// ReadGenesis reads the genesis file at path.
func ReadGenesis(path string) (custody.Options, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read genesis")
	}
	var opts custody.Options
	if err := json.Unmarshal(raw, &opts); err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "genesis: %s", err)
	}
	return opts, nil
}

// InitGenesis loads all sections of the genesis file in a single call.
func InitGenesis(ctx context.Context, host *custodyapp.Host, opts custody.Options) error {
	inits := []custody.Initializer{
		cash.Initializer{Controller: cash.NewController()},
		token.Initializer{},
		wallet.Initializer{},
	}
	return host.Update(ctx, "genesis", func(ctx context.Context, db custody.KVStore) error {
		for _, i := range inits {
			if err := i.FromGenesis(opts, db); err != nil {
				return err
			}
		}
		return nil
	})
}

// Load returns the wallet with given ID from the state of host.
func Load(ctx context.Context, host *custodyapp.Host, walletID string) (*Application, error) {
	// The token of the wallet is known only once the wallet is open.
	w, err := wallet.Open(ctx, host, walletID, wallet.Deps{})
	if err != nil {
		return nil, err
	}
	var tok *token.Contract
	if addr := w.Token(); len(addr) != 0 {
		err := host.View(ctx, func(ctx context.Context, db custody.ReadOnlyKVStore) error {
			var err error
			tok, err = token.Load(db, addr)
			return err
		})
		if err != nil {
			return nil, errors.Wrap(err, "wallet token")
		}
	}

	a := &Application{
		Host:   host,
		Cash:   cash.NewController(),
		Token:  tok,
		Events: wallet.NewBroadcaster(),
	}
	deps := wallet.Deps{Native: a.Cash, Notifier: a.Events}
	if tok != nil {
		deps.Token = tok
	}
	a.Wallet, err = wallet.Open(ctx, host, walletID, deps)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Close releases the database, if any.
func (a *Application) Close() error {
	if a.store == nil {
		return nil
	}
	return a.store.Close()
}

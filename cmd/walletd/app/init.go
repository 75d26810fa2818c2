package app

import (
	"encoding/hex"
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"strconv"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/crypto"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/x/cash"
	"github.com/iov-one/custody/x/token"
	"github.com/iov-one/custody/x/wallet"
)

// InitParams describe the genesis written by walletd init.
type InitParams struct {
	Owners      int
	Required    uint32
	Funds       uint64
	TokenName   string
	TokenSymbol string
	Decimals    uint32
	Supply      uint64
}

// DefaultInitParams create a wallet of three owners requiring two
// confirmations with a test token.
var DefaultInitParams = InitParams{
	Owners:      3,
	Required:    2,
	Funds:       1000000,
	TokenName:   "SuperToken",
	TokenSymbol: "ST",
	Decimals:    9,
	Supply:      1000000000,
}

// GenInitOptions generates a key for every owner and returns the genesis
// of a wallet owned by them. Every owner is funded with the native asset
// and the first owner deploys the token.
func GenInitOptions(p InitParams) (custody.Options, []crypto.PrivateKey, error) {
	if p.Owners <= 0 {
		return nil, nil, errors.Wrap(wallet.ErrEmptyOwnerSet, "at least one owner is needed")
	}
	keys := make([]crypto.PrivateKey, p.Owners)
	owners := make([]custody.Address, p.Owners)
	accounts := make([]cash.GenesisAccount, p.Owners)
	for i := range keys {
		keys[i] = crypto.GenPrivKeyEd25519()
		owners[i] = keys[i].PublicKey().Address()
		accounts[i] = cash.GenesisAccount{Address: owners[i], Amount: p.Funds}
	}

	walletParams := wallet.Params{
		ID:       wallet.DefaultID,
		Owners:   owners,
		Required: p.Required,
	}
	var tok *token.Genesis
	if p.TokenSymbol != "" {
		tok = &token.Genesis{
			Name:     p.TokenName,
			Symbol:   p.TokenSymbol,
			Decimals: p.Decimals,
			Supply:   p.Supply,
			Owner:    owners[0],
		}
		walletParams.Token = token.ContractAddress(p.TokenSymbol)
	}

	opts := make(custody.Options)
	for name, section := range map[string]interface{}{
		"cash":   accounts,
		"token":  tok,
		"wallet": []wallet.Params{walletParams},
	} {
		raw, err := json.Marshal(section)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "encode %s", name)
		}
		opts[name] = raw
	}
	return opts, keys, nil
}

// WriteGenesis writes the genesis file and the owner keys into home. It
// refuses to overwrite an existing genesis file.
func WriteGenesis(home string, opts custody.Options, keys []crypto.PrivateKey) error {
	path := GenesisFile(home)
	if _, err := os.Stat(path); err == nil {
		return errors.Wrapf(errors.ErrDuplicate, "genesis file %s exists", path)
	}
	keyDir := filepath.Join(home, "config", "keys")
	if err := os.MkdirAll(keyDir, 0700); err != nil {
		return errors.Wrap(err, "create config directory")
	}
	raw, err := json.MarshalIndent(opts, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode genesis")
	}
	if err := ioutil.WriteFile(path, raw, 0600); err != nil {
		return errors.Wrap(err, "write genesis")
	}
	for i, key := range keys {
		name := filepath.Join(keyDir, "owner-"+strconv.Itoa(i)+".key")
		if err := WriteKey(name, key); err != nil {
			return err
		}
	}
	return nil
}

// WriteKey stores the hex encoded seed of key.
func WriteKey(path string, key crypto.PrivateKey) error {
	enc := hex.EncodeToString(key.Seed())
	if err := ioutil.WriteFile(path, []byte(enc+"\n"), 0600); err != nil {
		return errors.Wrap(err, "write key")
	}
	return nil
}

// ReadKey reads a key written by WriteKey.
func ReadKey(path string) (crypto.PrivateKey, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read key")
	}
	seed, err := hex.DecodeString(string(trimNewline(raw)))
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "key %s is not hex encoded", path)
	}
	return crypto.PrivKeyEd25519FromSeed(seed)
}

func trimNewline(b []byte) []byte {
	for len(b) > 0 && (b[len(b)-1] == '\n' || b[len(b)-1] == '\r') {
		b = b[:len(b)-1]
	}
	return b
}

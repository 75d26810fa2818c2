package wallet

import (
	"github.com/iov-one/custody"
)

const optKey = "wallet"

// Initializer fulfils the Initializer interface to load data from
// the genesis file
type Initializer struct{}

var _ custody.Initializer = Initializer{}

// FromGenesis creates every wallet listed in the genesis file.
func (Initializer) FromGenesis(opts custody.Options, kv custody.KVStore) error {
	var wallets []Params
	if err := opts.ReadOptions(optKey, &wallets); err != nil {
		return err
	}
	for _, params := range wallets {
		if _, err := createConfig(kv, params); err != nil {
			return err
		}
	}
	return nil
}

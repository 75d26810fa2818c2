package token

import (
	"github.com/iov-one/custody"
)

const optKey = "token"

// Genesis describes the token deployed from the genesis file. Supply is
// given in whole tokens.
type Genesis struct {
	Name     string          `json:"name"`
	Symbol   string          `json:"symbol"`
	Decimals uint32          `json:"decimals"`
	Supply   uint64          `json:"supply"`
	Owner    custody.Address `json:"owner"`
}

// Initializer deploys the token described in the genesis file, if any.
type Initializer struct{}

var _ custody.Initializer = Initializer{}

// FromGenesis will parse the token description from genesis
// and deploy it
func (Initializer) FromGenesis(opts custody.Options, kv custody.KVStore) error {
	var gen *Genesis
	if err := opts.ReadOptions(optKey, &gen); err != nil {
		return err
	}
	if gen == nil {
		return nil
	}
	_, err := Deploy(kv, gen.Owner, gen.Name, gen.Symbol, gen.Decimals, gen.Supply)
	return err
}

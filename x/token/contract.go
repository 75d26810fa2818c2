package token

import (
	"context"
	"math"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/orm"
)

// Contract is a handle to a deployed token. It holds no state itself, all
// balances live in the store passed to each call.
type Contract struct {
	address  custody.Address
	info     orm.ModelBucket
	holdings orm.ModelBucket
}

// ContractAddress returns the address a token with given symbol is
// deployed at.
func ContractAddress(symbol string) custody.Address {
	return custody.NewCondition("token", "erc20", []byte(symbol)).Address()
}

func newContract(addr custody.Address) *Contract {
	return &Contract{
		address:  addr,
		info:     newInfoBucket(),
		holdings: newHoldingBucket(),
	}
}

// Deploy creates a token and assigns its whole supply to the owner. The
// supply is given in whole tokens.
func Deploy(db custody.KVStore, owner custody.Address, name, symbol string, decimals uint32, supply uint64) (*Contract, error) {
	info := TokenInfo{
		Name:     name,
		Symbol:   symbol,
		Decimals: decimals,
		Owner:    owner,
	}
	if err := info.Validate(); err != nil {
		return nil, err
	}
	total, err := scale(supply, decimals)
	if err != nil {
		return nil, err
	}
	info.TotalSupply = total

	c := newContract(ContractAddress(symbol))
	switch err := c.info.Has(db, c.address); {
	case err == nil:
		return nil, errors.Wrapf(errors.ErrDuplicate, "token %s", symbol)
	case !errors.ErrNotFound.Is(err):
		return nil, err
	}
	if err := c.info.Put(db, c.address, &info); err != nil {
		return nil, err
	}
	if err := c.holdings.Put(db, owner, &Holding{Amount: total}); err != nil {
		return nil, err
	}
	return c, nil
}

// Load returns the token deployed at addr.
func Load(db custody.ReadOnlyKVStore, addr custody.Address) (*Contract, error) {
	c := newContract(addr)
	if err := c.info.Has(db, addr); err != nil {
		return nil, errors.Wrapf(err, "token %s", addr)
	}
	return c, nil
}

// Address returns the address of this token contract.
func (c *Contract) Address() custody.Address {
	return c.address
}

// Info returns the token description.
func (c *Contract) Info(db custody.ReadOnlyKVStore) (*TokenInfo, error) {
	var info TokenInfo
	if err := c.info.One(db, c.address, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// BalanceOf returns the amount held by account.
func (c *Contract) BalanceOf(db custody.ReadOnlyKVStore, account custody.Address) (uint64, error) {
	var h Holding
	switch err := c.holdings.One(db, account, &h); {
	case err == nil:
		return h.Amount, nil
	case errors.ErrNotFound.Is(err):
		return 0, nil
	default:
		return 0, err
	}
}

// Transfer moves amount from one account to another. It returns false
// without changing anything if the sender cannot cover the amount. A
// transfer to the zero address is an error.
func (c *Contract) Transfer(ctx context.Context, db custody.KVStore, from, to custody.Address, amount uint64) (bool, error) {
	if to.IsZero() || to.Validate() != nil {
		return false, errors.Wrapf(ErrInvalidRecipient, "%s", to)
	}
	fromBalance, err := c.BalanceOf(db, from)
	if err != nil {
		return false, err
	}
	if fromBalance < amount {
		custody.GetLogger(ctx).Debug("token transfer declined",
			"token", c.address, "balance", fromBalance, "amount", amount)
		return false, nil
	}
	if from.Equals(to) {
		return true, nil
	}
	toBalance, err := c.BalanceOf(db, to)
	if err != nil {
		return false, err
	}
	// The total supply is fixed and fits, so the sum cannot overflow.
	if err := c.holdings.Put(db, from, &Holding{Amount: fromBalance - amount}); err != nil {
		return false, err
	}
	if err := c.holdings.Put(db, to, &Holding{Amount: toBalance + amount}); err != nil {
		return false, err
	}
	return true, nil
}

func scale(whole uint64, decimals uint32) (uint64, error) {
	total := whole
	for i := uint32(0); i < decimals; i++ {
		if total > math.MaxUint64/10 {
			return 0, errors.Wrapf(errors.ErrOverflow, "supply of %d with %d decimals", whole, decimals)
		}
		total *= 10
	}
	return total, nil
}

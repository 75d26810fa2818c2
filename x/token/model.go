package token

import (
	"regexp"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/orm"
)

// MaxDecimals limits the precision of a token.
const MaxDecimals = 18

var (
	isTokenName   = regexp.MustCompile(`^[A-Za-z0-9 \-_:]{3,32}$`).MatchString
	isTokenSymbol = regexp.MustCompile(`^[A-Z][A-Z0-9]{1,11}$`).MatchString
)

// TokenInfo describes a deployed token.
type TokenInfo struct {
	Name        string          `protobuf:"bytes,1,opt,name=name,proto3" json:"name"`
	Symbol      string          `protobuf:"bytes,2,opt,name=symbol,proto3" json:"symbol"`
	Decimals    uint32          `protobuf:"varint,3,opt,name=decimals,proto3" json:"decimals"`
	TotalSupply uint64          `protobuf:"varint,4,opt,name=total_supply,json=totalSupply,proto3" json:"total_supply"`
	Owner       custody.Address `protobuf:"bytes,5,opt,name=owner,proto3" json:"owner"`
}

var _ orm.Model = (*TokenInfo)(nil)

func (m *TokenInfo) Reset()         { *m = TokenInfo{} }
func (m *TokenInfo) String() string { return proto.CompactTextString(m) }
func (*TokenInfo) ProtoMessage()    {}

// Validate checks the token description.
func (m *TokenInfo) Validate() error {
	switch {
	case !isTokenName(m.Name):
		return errors.Wrapf(ErrInvalidToken, "name %q", m.Name)
	case !isTokenSymbol(m.Symbol):
		return errors.Wrapf(ErrInvalidToken, "symbol %q", m.Symbol)
	case m.Decimals > MaxDecimals:
		return errors.Wrapf(ErrInvalidToken, "decimals %d", m.Decimals)
	}
	if err := m.Owner.Validate(); err != nil {
		return errors.Wrap(err, "owner")
	}
	return nil
}

// Holding is the token balance of a single account.
type Holding struct {
	Amount uint64 `protobuf:"varint,1,opt,name=amount,proto3" json:"amount"`
}

var _ orm.Model = (*Holding)(nil)

func (m *Holding) Reset()         { *m = Holding{} }
func (m *Holding) String() string { return proto.CompactTextString(m) }
func (*Holding) ProtoMessage()    {}

// Validate accepts every balance.
func (m *Holding) Validate() error {
	return nil
}

func newInfoBucket() orm.ModelBucket {
	return orm.NewModelBucket("tokeninfo", &TokenInfo{})
}

func newHoldingBucket() orm.ModelBucket {
	return orm.NewModelBucket("tokenholding", &Holding{})
}

package wallet

import (
	"encoding/json"
	"strings"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/orm"
)

// AssetKind tells what a transaction moves.
type AssetKind int32

const (
	// AssetNative transactions move the native asset and carry the
	// payload to the recipient.
	AssetNative AssetKind = 1
	// AssetToken transactions move the token of the wallet.
	AssetToken AssetKind = 2
)

// Validate returns an error for unknown kinds.
func (k AssetKind) Validate() error {
	switch k {
	case AssetNative, AssetToken:
		return nil
	default:
		return errors.Wrapf(ErrInvalidAssetKind, "%d", int32(k))
	}
}

func (k AssetKind) String() string {
	switch k {
	case AssetNative:
		return "native"
	case AssetToken:
		return "token"
	default:
		return "unknown"
	}
}

// ParseAssetKind returns the kind named by s.
func ParseAssetKind(s string) (AssetKind, error) {
	switch strings.ToLower(s) {
	case "native":
		return AssetNative, nil
	case "token":
		return AssetToken, nil
	default:
		return 0, errors.Wrapf(ErrInvalidAssetKind, "%q", s)
	}
}

func (k AssetKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *AssetKind) UnmarshalJSON(raw []byte) error {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return errors.Wrap(errors.ErrInput, "asset kind must be a string")
	}
	kind, err := ParseAssetKind(s)
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

// Transaction is a request to move funds out of the wallet. Only the
// confirmation counter and the executed flag change after submission, and
// nothing changes once it is executed.
type Transaction struct {
	Recipient     custody.Address `protobuf:"bytes,1,opt,name=recipient,proto3" json:"recipient"`
	Amount        uint64          `protobuf:"varint,2,opt,name=amount,proto3" json:"amount"`
	Payload       []byte          `protobuf:"bytes,3,opt,name=payload,proto3" json:"payload,omitempty"`
	Kind          AssetKind       `protobuf:"varint,4,opt,name=kind,proto3" json:"asset"`
	Executed      bool            `protobuf:"varint,5,opt,name=executed,proto3" json:"executed"`
	Confirmations uint32          `protobuf:"varint,6,opt,name=confirmations,proto3" json:"confirmations"`
}

var _ orm.Model = (*Transaction)(nil)

func (m *Transaction) Reset()         { *m = Transaction{} }
func (m *Transaction) String() string { return proto.CompactTextString(m) }
func (*Transaction) ProtoMessage()    {}

// Validate checks the asset kind only. Recipient and amount are checked
// when the transaction is executed.
func (m *Transaction) Validate() error {
	return m.Kind.Validate()
}

// Confirmation is stored for every owner that confirmed a transaction.
type Confirmation struct {
	Owner custody.Address `protobuf:"bytes,1,opt,name=owner,proto3" json:"owner"`
}

var _ orm.Model = (*Confirmation)(nil)

func (m *Confirmation) Reset()         { *m = Confirmation{} }
func (m *Confirmation) String() string { return proto.CompactTextString(m) }
func (*Confirmation) ProtoMessage()    {}

func (m *Confirmation) Validate() error {
	return m.Owner.Validate()
}

// Config is the persisted construction of a wallet.
type Config struct {
	Owners   []custody.Address `protobuf:"bytes,1,rep,name=owners,proto3" json:"owners"`
	Required uint32            `protobuf:"varint,2,opt,name=required,proto3" json:"required"`
	Token    custody.Address   `protobuf:"bytes,3,opt,name=token,proto3" json:"token,omitempty"`
	Address  custody.Address   `protobuf:"bytes,4,opt,name=address,proto3" json:"address"`
}

var _ orm.Model = (*Config)(nil)

func (m *Config) Reset()         { *m = Config{} }
func (m *Config) String() string { return proto.CompactTextString(m) }
func (*Config) ProtoMessage()    {}

func (m *Config) Validate() error {
	if _, err := NewRegistry(m.Owners, m.Required, m.Token); err != nil {
		return err
	}
	if len(m.Token) != 0 {
		if err := m.Token.Validate(); err != nil {
			return errors.Wrap(err, "token")
		}
	}
	return m.Address.Validate()
}

// AddressOf returns the account of the wallet with given ID.
func AddressOf(id string) custody.Address {
	return custody.NewCondition("multisig", "wallet", []byte(id)).Address()
}

func newConfigBucket() orm.ModelBucket {
	return orm.NewModelBucket("walletconf", &Config{})
}

package cash

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/custody/orm"
)

// BucketName is where we store the balances
const BucketName = "cash"

// Account holds the native asset balance of a single address.
type Account struct {
	Amount uint64 `protobuf:"varint,1,opt,name=amount,proto3" json:"amount"`
}

var _ orm.Model = (*Account)(nil)

func (m *Account) Reset()         { *m = Account{} }
func (m *Account) String() string { return proto.CompactTextString(m) }
func (*Account) ProtoMessage()    {}

// Validate accepts every balance.
func (m *Account) Validate() error {
	return nil
}

// NewBucket returns a bucket holding accounts by their address.
func NewBucket() orm.ModelBucket {
	return orm.NewModelBucket(BucketName, &Account{})
}

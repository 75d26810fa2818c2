package orm

import (
	"github.com/gogo/protobuf/proto"
)

// Model is implemented by any entity that can be stored using ModelBucket.
//
// Models are plain structs carrying protobuf field tags. Serialization is
// done by the protobuf runtime, so a model must not define its own
// Marshal or Unmarshal methods.
type Model interface {
	proto.Message
	Validate() error
}

package wallet

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

// Registry holds the owners of a wallet and the number of confirmations
// a transaction needs. It never changes once created.
type Registry struct {
	owners   []custody.Address
	members  map[string]struct{}
	required uint32
	token    custody.Address
}

// NewRegistry validates the owners and the threshold. The owners are
// checked in order, so the first malformed or repeated one is reported.
func NewRegistry(owners []custody.Address, required uint32, token custody.Address) (*Registry, error) {
	if len(owners) == 0 {
		return nil, errors.Wrap(ErrEmptyOwnerSet, "no owners")
	}
	if required == 0 || int(required) > len(owners) {
		return nil, errors.Wrapf(ErrInvalidThreshold, "%d of %d", required, len(owners))
	}

	r := &Registry{
		owners:   make([]custody.Address, 0, len(owners)),
		members:  make(map[string]struct{}, len(owners)),
		required: required,
		token:    token,
	}
	for i, o := range owners {
		if o.IsZero() {
			return nil, errors.Wrapf(ErrZeroAddress, "owner %d", i)
		}
		if err := o.Validate(); err != nil {
			return nil, errors.Wrapf(ErrInvalidOwner, "owner %d: %s", i, err)
		}
		if _, ok := r.members[string(o)]; ok {
			return nil, errors.Wrapf(ErrDuplicateOwner, "owner %d: %s", i, o)
		}
		r.members[string(o)] = struct{}{}
		r.owners = append(r.owners, append(custody.Address{}, o...))
	}
	return r, nil
}

// IsOwner returns true if addr is one of the owners.
func (r *Registry) IsOwner(addr custody.Address) bool {
	_, ok := r.members[string(addr)]
	return ok
}

// Owners returns the owners in the order they were given.
func (r *Registry) Owners() []custody.Address {
	res := make([]custody.Address, len(r.owners))
	for i, o := range r.owners {
		res[i] = append(custody.Address{}, o...)
	}
	return res
}

// Required returns the number of confirmations a transaction needs.
func (r *Registry) Required() uint32 {
	return r.required
}

// Token returns the address of the token contract, which may be empty.
func (r *Registry) Token() custody.Address {
	return r.token
}

// RequireOwner fails with ErrNotAnOwner unless caller is an owner.
func (r *Registry) RequireOwner(caller custody.Address) error {
	if !r.IsOwner(caller) {
		return errors.Wrapf(ErrNotAnOwner, "%s", caller)
	}
	return nil
}

package wallet

import (
	"sync"

	"github.com/iov-one/custody"
)

// EventKind names what happened to a transaction.
type EventKind string

const (
	EventSubmission   EventKind = "submission"
	EventConfirmation EventKind = "confirmation"
	EventRevocation   EventKind = "revocation"
	EventExecution    EventKind = "execution"
)

// Event is published after an operation of a wallet was committed.
// Recipient, Amount, Payload and Asset are set for submissions only.
type Event struct {
	Kind      EventKind       `json:"kind"`
	Wallet    string          `json:"wallet"`
	Index     uint64          `json:"index"`
	Owner     custody.Address `json:"owner"`
	Recipient custody.Address `json:"recipient,omitempty"`
	Amount    uint64          `json:"amount,omitempty"`
	Payload   []byte          `json:"payload,omitempty"`
	Asset     AssetKind       `json:"asset,omitempty"`
}

// Notifier receives the events of committed operations. Notify is called
// after the state is committed and must not block.
type Notifier interface {
	Notify(Event)
}

// Broadcaster is a Notifier that hands every event to all subscribers.
// A subscriber that does not keep up misses events instead of slowing
// the wallet down.
type Broadcaster struct {
	mu     sync.Mutex
	subs   map[int]chan Event
	nextID int
}

var _ Notifier = (*Broadcaster)(nil)

// NewBroadcaster returns a Broadcaster without subscribers.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[int]chan Event)}
}

// Subscribe returns a channel receiving events and a function that ends
// the subscription and closes the channel.
func (b *Broadcaster) Subscribe(buffer int) (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan Event, buffer)
	b.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

// Notify implements Notifier.
func (b *Broadcaster) Notify(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
			droppedEvents.Inc()
		}
	}
}

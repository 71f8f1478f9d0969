// Package feed is the in-process change feed over store writes. Every
// successful repository mutation publishes one event; sessions subscribe per
// table, optionally scoped to a single conversation. It mirrors the
// subscribe contract of the backing store: ordered per subscription,
// best-effort delivery (a slow consumer loses oldest events rather than
// blocking writers).
package feed

import (
	"sync"

	"orgchat/internal/logger"
)

// Event types.
const (
	EventInsert = "insert"
	EventUpdate = "update"
	EventDelete = "delete"
)

// Table names events are published under.
const (
	TableMessages  = "messages"
	TablePollVotes = "poll_votes"
	TableIndex     = "conversation_index"
)

type Event struct {
	Table          string `json:"table"`
	Type           string `json:"type"`
	ConversationID string `json:"conversation_id"`
	Payload        any    `json:"payload"`
}

// Subscription receives events for one (table, conversation) scope. C is
// closed by Unsubscribe; never close it from the consumer side.
type Subscription struct {
	C chan Event

	id             int
	table          string
	conversationID string // empty matches every conversation
}

type Broker struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]*Subscription
}

func NewBroker() *Broker {
	return &Broker{subs: make(map[int]*Subscription)}
}

const subscriptionBuffer = 64

// Subscribe registers a consumer for table events. conversationID narrows
// the scope to one conversation; pass "" for a global feed (the sidebar
// index subscription uses this).
func (b *Broker) Subscribe(table, conversationID string) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := &Subscription{
		C:              make(chan Event, subscriptionBuffer),
		id:             b.nextID,
		table:          table,
		conversationID: conversationID,
	}
	b.subs[sub.id] = sub
	return sub
}

// Unsubscribe removes the consumer and closes its channel. Safe to call once
// per subscription; in-flight events already buffered are discarded with it.
func (b *Broker) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subs[sub.id]; ok {
		delete(b.subs, sub.id)
		close(sub.C)
	}
}

// Publish fans the event out to every matching subscription. Writers never
// block: when a subscriber's buffer is full the oldest buffered event is
// dropped to make room, keeping per-subscription order for what remains.
func (b *Broker) Publish(ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subs {
		if sub.table != ev.Table {
			continue
		}
		if sub.conversationID != "" && sub.conversationID != ev.ConversationID {
			continue
		}
		select {
		case sub.C <- ev:
		default:
			select {
			case <-sub.C:
			default:
			}
			select {
			case sub.C <- ev:
			default:
				logger.Warn("feed: dropped event for slow subscriber",
					"table", ev.Table, "type", ev.Type)
			}
		}
	}
}

package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribeScoping(t *testing.T) {
	b := NewBroker()
	scoped := b.Subscribe(TableMessages, "conv-1")
	global := b.Subscribe(TableMessages, "")
	other := b.Subscribe(TablePollVotes, "conv-1")
	defer b.Unsubscribe(scoped)
	defer b.Unsubscribe(global)
	defer b.Unsubscribe(other)

	b.Publish(Event{Table: TableMessages, Type: EventInsert, ConversationID: "conv-1", Payload: "a"})
	b.Publish(Event{Table: TableMessages, Type: EventInsert, ConversationID: "conv-2", Payload: "b"})

	// The scoped subscription sees only its conversation.
	assert.Equal(t, "a", (<-scoped.C).Payload)
	assert.Empty(t, scoped.C)

	// The global one sees both, in publish order.
	assert.Equal(t, "a", (<-global.C).Payload)
	assert.Equal(t, "b", (<-global.C).Payload)

	// The other table saw nothing.
	assert.Empty(t, other.C)
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	b := NewBroker()
	sub := b.Subscribe(TableIndex, "")

	b.Unsubscribe(sub)
	_, open := <-sub.C
	assert.False(t, open)

	// A second Unsubscribe and publishes after removal are harmless.
	b.Unsubscribe(sub)
	b.Publish(Event{Table: TableIndex, Type: EventUpdate, ConversationID: "conv-1"})
}

func TestPublish_SlowSubscriberLosesOldest(t *testing.T) {
	b := NewBroker()
	sub := b.Subscribe(TableMessages, "")
	defer b.Unsubscribe(sub)

	// Overflow the buffer without draining; the writer must not block.
	for i := 0; i < subscriptionBuffer+10; i++ {
		b.Publish(Event{Table: TableMessages, Type: EventInsert, ConversationID: "conv-1", Payload: i})
	}

	require.Len(t, sub.C, subscriptionBuffer)

	// The oldest events were dropped; what remains is still in order.
	first := <-sub.C
	assert.Equal(t, 10, first.Payload)
	second := <-sub.C
	assert.Equal(t, 11, second.Payload)
}

func TestUnsubscribeNil(t *testing.T) {
	b := NewBroker()
	b.Unsubscribe(nil)
}

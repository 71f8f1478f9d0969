// Package chatlog is the client-side half of the real-time layer: an
// ordered local message log and a sidebar ordering that reconcile
// change-feed events into session state. A Log belongs to one client
// session and is single-goroutine by contract; it has no locking.
package chatlog

import (
	"orgchat/internal/feed"
	modelChat "orgchat/internal/models/chat"
)

// RefetchFunc reloads the full message list of a conversation. Poll-vote
// events trigger it: votes are relational rows, so the log replaces the
// conversation wholesale instead of patching one option.
type RefetchFunc func(conversationID string) ([]modelChat.Message, error)

type Log struct {
	ConversationID string

	messages []modelChat.Message
	index    map[string]int // message id -> position in messages

	refetch RefetchFunc
}

func NewLog(conversationID string, refetch RefetchFunc) *Log {
	return &Log{
		ConversationID: conversationID,
		index:          make(map[string]int),
		refetch:        refetch,
	}
}

// Seed replaces the log with an initial fetch.
func (l *Log) Seed(messages []modelChat.Message) {
	l.messages = append([]modelChat.Message(nil), messages...)
	l.reindex()
}

// Messages returns the current ordered log.
func (l *Log) Messages() []modelChat.Message {
	return l.messages
}

// Apply reconciles one change-feed event into the log.
func (l *Log) Apply(ev feed.Event) error {
	switch ev.Table {
	case feed.TablePollVotes:
		return l.refetchAll()
	case feed.TableMessages:
		// fall through to the typed payload below
	default:
		return nil
	}

	msg, ok := ev.Payload.(*modelChat.Message)
	if !ok {
		return nil
	}

	switch ev.Type {
	case feed.EventInsert:
		l.insert(msg)
	case feed.EventUpdate:
		l.merge(msg)
	case feed.EventDelete:
		l.remove(msg.ID)
	}
	return nil
}

// insert appends unless the id is already present: the sender's optimistic
// local insert and the echoed feed event must collapse to one entry.
func (l *Log) insert(msg *modelChat.Message) {
	if _, ok := l.index[msg.ID]; ok {
		return
	}
	l.index[msg.ID] = len(l.messages)
	l.messages = append(l.messages, *msg)
}

// merge folds the event's populated fields into the existing entry by id:
// tombstone fields and reaction sets arrive this way. Unknown ids are
// ignored (the viewer may have the message hidden).
func (l *Log) merge(msg *modelChat.Message) {
	pos, ok := l.index[msg.ID]
	if !ok {
		return
	}
	current := &l.messages[pos]

	if msg.Content != "" {
		current.Content = msg.Content
	}
	if msg.DeletedAt != nil {
		current.DeletedAt = msg.DeletedAt
		current.DeletedBy = msg.DeletedBy
		current.Reactions = nil
		current.Attachments = nil
	}
	if msg.Reactions != nil {
		current.Reactions = msg.Reactions
	}
	if msg.Options != nil {
		current.Options = msg.Options
	}
}

func (l *Log) remove(id string) {
	pos, ok := l.index[id]
	if !ok {
		return
	}
	l.messages = append(l.messages[:pos], l.messages[pos+1:]...)
	l.reindex()
}

func (l *Log) refetchAll() error {
	if l.refetch == nil {
		return nil
	}
	messages, err := l.refetch(l.ConversationID)
	if err != nil {
		return err
	}
	l.Seed(messages)
	return nil
}

func (l *Log) reindex() {
	l.index = make(map[string]int, len(l.messages))
	for i := range l.messages {
		l.index[l.messages[i].ID] = i
	}
}

// ConversationList keeps the sidebar order: the conversation touched by the
// most recent index event moves to the front, insert and update alike.
type ConversationList struct {
	ids []string
}

func NewConversationList(ids []string) *ConversationList {
	return &ConversationList{ids: append([]string(nil), ids...)}
}

func (c *ConversationList) IDs() []string {
	return c.ids
}

// Bump moves conversationID to the front, inserting it if unseen.
func (c *ConversationList) Bump(conversationID string) {
	out := make([]string, 0, len(c.ids)+1)
	out = append(out, conversationID)
	for _, id := range c.ids {
		if id != conversationID {
			out = append(out, id)
		}
	}
	c.ids = out
}

// Apply routes an index-feed event into the ordering.
func (c *ConversationList) Apply(ev feed.Event) {
	if ev.Table != feed.TableIndex {
		return
	}
	c.Bump(ev.ConversationID)
}

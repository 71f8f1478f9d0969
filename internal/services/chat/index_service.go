package chat

import (
	"context"
	"errors"
	"sort"
	"time"

	"gorm.io/gorm"

	"orgchat/internal/feed"
	"orgchat/internal/logger"
	modelChat "orgchat/internal/models/chat"
	repoChat "orgchat/internal/repositories/chat"
)

// IndexService maintains the sidebar projection: one denormalized
// last-message row per conversation, upserted on every send and repaired
// lazily when a read detects a broken row.
type IndexService struct {
	Index         repoChat.IndexRepository
	Conversations repoChat.ConversationRepository
	Messages      repoChat.MessageRepository
	Feed          *feed.Broker
}

func NewIndexService(
	index repoChat.IndexRepository,
	conversations repoChat.ConversationRepository,
	messages repoChat.MessageRepository,
	broker *feed.Broker,
) *IndexService {
	return &IndexService{
		Index:         index,
		Conversations: conversations,
		Messages:      messages,
		Feed:          broker,
	}
}

// Update upserts the projection row keyed by conversation and announces it
// on the global index feed so sidebars reorder.
func (s *IndexService) Update(ctx context.Context, conversationID, lastMessage string) error {
	if err := s.Index.Upsert(ctx, conversationID, lastMessage, time.Now()); err != nil {
		return err
	}
	if s.Feed != nil {
		s.Feed.Publish(feed.Event{
			Table:          feed.TableIndex,
			Type:           feed.EventUpdate,
			ConversationID: conversationID,
			Payload:        lastMessage,
		})
	}
	return nil
}

// ConversationListing pairs a conversation with its projection row.
type ConversationListing struct {
	Conversation  modelChat.Conversation `json:"conversation"`
	LastMessage   string                 `json:"last_message"`
	LastMessageAt *time.Time             `json:"last_message_at"`
}

// ListForUser returns the user's conversations with previews, most recent
// first. Broken index rows (timestamp present, text missing) are patched
// in-memory from the true latest message for this response and repaired in
// the background; the repair never blocks or fails the read, and concurrent
// readers repairing the same row converge through the upsert key.
func (s *IndexService) ListForUser(ctx context.Context, userID string) ([]ConversationListing, error) {
	convs, err := s.Conversations.FindAllByUser(ctx, userID)
	if err != nil {
		return nil, storeErr(err)
	}

	ids := make([]string, 0, len(convs))
	for _, c := range convs {
		ids = append(ids, c.ID)
	}
	rows, err := s.Index.FindByConversations(ctx, ids)
	if err != nil {
		return nil, storeErr(err)
	}
	byConv := make(map[string]*modelChat.ConversationIndex, len(rows))
	for i := range rows {
		byConv[rows[i].ConversationID] = &rows[i]
	}

	listings := make([]ConversationListing, 0, len(convs))
	for _, conv := range convs {
		listing := ConversationListing{Conversation: conv}
		if row, ok := byConv[conv.ID]; ok {
			listing.LastMessageAt = row.LastMessageAt
			if row.Broken() {
				listing.LastMessage = s.repair(ctx, conv.ID)
			} else if row.LastMessage != nil {
				listing.LastMessage = *row.LastMessage
			}
		}
		listings = append(listings, listing)
	}

	sortListings(listings)
	return listings, nil
}

// repair fetches the authoritative latest message, returns its content for
// the current response and persists the correction asynchronously.
func (s *IndexService) repair(ctx context.Context, conversationID string) string {
	latest, err := s.Messages.LatestInConversation(ctx, conversationID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.WithError(err).Warn("index repair lookup failed", "conversation_id", conversationID)
		}
		return ""
	}

	// Same fallback as the send path, or an attachment-only latest message
	// would persist an empty preview and leave the row broken forever.
	content := previewText(latest)
	go func() {
		// Detached from the request context: the read must not wait on it.
		if err := s.Update(context.Background(), conversationID, content); err != nil {
			logger.WithError(err).Warn("index repair persist failed", "conversation_id", conversationID)
		}
	}()
	return content
}

// sortListings orders previews most-recent-first; conversations with no
// messages yet sink to the end.
func sortListings(listings []ConversationListing) {
	sort.SliceStable(listings, func(i, j int) bool {
		a, b := listings[i].LastMessageAt, listings[j].LastMessageAt
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return a.After(*b)
	})
}

package chat

import (
	"context"
	"time"

	"github.com/google/uuid"

	"orgchat/internal/feed"
	modelChat "orgchat/internal/models/chat"
	"orgchat/internal/repositories"
	repoChat "orgchat/internal/repositories/chat"
)

// Toggle outcomes.
const (
	ReactionAdded   = "added"
	ReactionRemoved = "removed"
)

type ReactionService struct {
	Reactions repoChat.ReactionRepository
	Messages  repoChat.MessageRepository
	Users     repositories.UserRepository
	Feed      *feed.Broker
}

func NewReactionService(
	reactions repoChat.ReactionRepository,
	messages repoChat.MessageRepository,
	users repositories.UserRepository,
	broker *feed.Broker,
) *ReactionService {
	return &ReactionService{
		Reactions: reactions,
		Messages:  messages,
		Users:     users,
		Feed:      broker,
	}
}

// Toggle flips the user's reaction on one emoji. Both directions are
// conflict-tolerant: a duplicate add racing with another session collapses
// to the unique-constraint outcome and still reports "added"; removing an
// already-removed row still reports "removed". Calling twice returns the
// reaction set to its pre-call state.
func (s *ReactionService) Toggle(ctx context.Context, messageID, userID, emoji string) (string, error) {
	msg, err := s.Messages.FindByID(ctx, messageID)
	if err != nil {
		return "", storeErr(err)
	}

	exists, err := s.Reactions.Exists(ctx, userID, messageID, emoji)
	if err != nil {
		return "", storeErr(err)
	}

	var outcome string
	if exists {
		if _, err := s.Reactions.Remove(ctx, userID, messageID, emoji); err != nil {
			return "", storeErr(err)
		}
		outcome = ReactionRemoved
	} else {
		reaction := &modelChat.MessageReaction{
			ID:        uuid.New().String(),
			MessageID: messageID,
			UserID:    userID,
			Emoji:     emoji,
			CreatedAt: time.Now(),
		}
		if _, err := s.Reactions.Add(ctx, reaction); err != nil {
			return "", storeErr(err)
		}
		outcome = ReactionAdded
	}

	if s.Feed != nil {
		rows, err := s.Reactions.GetByMessageID(ctx, messageID)
		if err == nil {
			update := modelChat.Message{
				ID:             msg.ID,
				ConversationID: msg.ConversationID,
				Reactions:      rows,
			}
			if update.Reactions == nil {
				update.Reactions = []modelChat.MessageReaction{}
			}
			s.Feed.Publish(feed.Event{
				Table:          feed.TableMessages,
				Type:           feed.EventUpdate,
				ConversationID: msg.ConversationID,
				Payload:        &update,
			})
		}
	}

	return outcome, nil
}

// Reactor is one entry of a grouped reaction listing.
type Reactor struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
}

// ReactionGroup is one emoji with everyone who reacted with it, in reaction
// order. Groups exist only while they have members; an emoji whose last
// reactor left has no group, so the UI never sees a zero badge.
type ReactionGroup struct {
	Emoji    string    `json:"emoji"`
	Reactors []Reactor `json:"reactors"`
}

// GroupedByMessage returns the emoji-to-reactors grouping, resolved against
// current profile data.
func (s *ReactionService) GroupedByMessage(ctx context.Context, messageID string) ([]ReactionGroup, error) {
	rows, err := s.Reactions.GetByMessageID(ctx, messageID)
	if err != nil {
		return nil, storeErr(err)
	}
	if len(rows) == 0 {
		return []ReactionGroup{}, nil
	}

	userIDs := make([]string, 0, len(rows))
	seen := map[string]bool{}
	for _, r := range rows {
		if !seen[r.UserID] {
			seen[r.UserID] = true
			userIDs = append(userIDs, r.UserID)
		}
	}
	users, err := s.Users.FindByIDs(ctx, userIDs)
	if err != nil {
		return nil, storeErr(err)
	}
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID] = u.DisplayName
	}

	order := []string{}
	grouped := map[string][]Reactor{}
	for _, r := range rows {
		if _, ok := grouped[r.Emoji]; !ok {
			order = append(order, r.Emoji)
		}
		grouped[r.Emoji] = append(grouped[r.Emoji], Reactor{
			UserID:      r.UserID,
			DisplayName: names[r.UserID],
		})
	}

	groups := make([]ReactionGroup, 0, len(order))
	for _, emoji := range order {
		groups = append(groups, ReactionGroup{Emoji: emoji, Reactors: grouped[emoji]})
	}
	return groups, nil
}

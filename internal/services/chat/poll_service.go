package chat

import (
	"context"
	"time"

	"github.com/google/uuid"

	"orgchat/internal/feed"
	"orgchat/internal/logger"
	modelChat "orgchat/internal/models/chat"
	repoChat "orgchat/internal/repositories/chat"
	"orgchat/pkg/apperrors"
)

// Vote outcomes.
const (
	VoteAdded   = "added"
	VoteRemoved = "removed"
)

type PollService struct {
	Polls    repoChat.PollRepository
	Messages repoChat.MessageRepository
	Members  repoChat.MemberRepository
	Index    *IndexService
	Notifier Notifier
	Feed     *feed.Broker
}

func NewPollService(
	polls repoChat.PollRepository,
	messages repoChat.MessageRepository,
	members repoChat.MemberRepository,
	index *IndexService,
	notifier Notifier,
	broker *feed.Broker,
) *PollService {
	return &PollService{
		Polls:    polls,
		Messages: messages,
		Members:  members,
		Index:    index,
		Notifier: notifier,
		Feed:     broker,
	}
}

// CreatePoll stores a poll-typed message and one option row per answer,
// display order following the input slice.
func (s *PollService) CreatePoll(ctx context.Context, conversationID, userID, question string, options []string, allowMultiple bool) (*modelChat.Message, error) {
	if len(options) < 2 {
		return nil, apperrors.NewBadRequestError("a poll needs at least two options")
	}

	isMember, err := s.Members.IsMember(ctx, userID, conversationID)
	if err != nil {
		return nil, storeErr(err)
	}
	if !isMember {
		return nil, apperrors.NewForbiddenError("sender is not a member of the conversation")
	}

	msg := &modelChat.Message{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		SenderID:       userID,
		SenderType:     modelChat.SenderHuman,
		MessageType:    modelChat.MessagePoll,
		Content:        question,
		AllowMultiple:  allowMultiple,
		CreatedAt:      time.Now(),
	}
	if err := s.Messages.Create(ctx, msg); err != nil {
		return nil, storeErr(err)
	}

	rows := make([]modelChat.PollOption, 0, len(options))
	for i, text := range options {
		rows = append(rows, modelChat.PollOption{
			ID:        uuid.New().String(),
			MessageID: msg.ID,
			Text:      text,
			Position:  i,
			CreatedAt: time.Now(),
		})
	}
	if err := s.Polls.CreateOptions(ctx, rows); err != nil {
		return nil, storeErr(err)
	}
	msg.Options = rows

	if s.Index != nil {
		if err := s.Index.Update(ctx, conversationID, question); err != nil {
			logger.WithError(err).Warn("conversation index update failed",
				"conversation_id", conversationID)
		}
	}
	if s.Notifier != nil {
		members, err := s.Members.GetMembers(ctx, conversationID)
		if err == nil {
			memberIDs := make([]string, 0, len(members))
			for _, m := range members {
				memberIDs = append(memberIDs, m.UserID)
			}
			s.Notifier.FanOutMessage(ctx, msg, memberIDs)
		}
	}

	if s.Feed != nil {
		s.Feed.Publish(feed.Event{
			Table:          feed.TableMessages,
			Type:           feed.EventInsert,
			ConversationID: conversationID,
			Payload:        msg,
		})
	}

	return msg, nil
}

// Vote toggles the user's vote on one option. An existing vote on the same
// option is removed. Otherwise, for single-choice polls the user's votes on
// every sibling option are cleared first, so exclusivity is a write-time
// guarantee readers never have to resolve.
func (s *PollService) Vote(ctx context.Context, optionID, userID string) (string, error) {
	option, err := s.Polls.FindOption(ctx, optionID)
	if err != nil {
		return "", storeErr(err)
	}
	msg, err := s.Messages.FindByID(ctx, option.MessageID)
	if err != nil {
		return "", storeErr(err)
	}
	if msg.IsTombstoned() {
		return "", apperrors.ErrInvariantViolation("poll", "cannot vote on a deleted poll")
	}

	removed, err := s.Polls.RemoveVote(ctx, optionID, userID)
	if err != nil {
		return "", storeErr(err)
	}

	outcome := VoteRemoved
	if !removed {
		if !msg.AllowMultiple {
			if err := s.Polls.RemoveVotesByMessage(ctx, msg.ID, userID); err != nil {
				return "", storeErr(err)
			}
		}
		vote := &modelChat.PollVote{
			ID:        uuid.New().String(),
			OptionID:  optionID,
			MessageID: msg.ID,
			UserID:    userID,
			CreatedAt: time.Now(),
		}
		if _, err := s.Polls.AddVote(ctx, vote); err != nil {
			return "", storeErr(err)
		}
		outcome = VoteAdded
	}

	// Votes are relational rows, not counters: consumers refetch the whole
	// message rather than patch one option.
	if s.Feed != nil {
		s.Feed.Publish(feed.Event{
			Table:          feed.TablePollVotes,
			Type:           feed.EventUpdate,
			ConversationID: msg.ConversationID,
			Payload:        msg.ID,
		})
	}

	return outcome, nil
}

// OptionResult is one option with its recomputed tally.
type OptionResult struct {
	OptionID  string `json:"option_id"`
	Text      string `json:"text"`
	Position  int    `json:"position"`
	Votes     int    `json:"votes"`
	UserVoted bool   `json:"user_voted"`
}

// OptionsWithCounts recomputes vote counts and the viewer's flag per option
// on every fetch.
func (s *PollService) OptionsWithCounts(ctx context.Context, messageID, viewerID string) ([]OptionResult, error) {
	options, err := s.Polls.GetOptionsByMessage(ctx, messageID)
	if err != nil {
		return nil, storeErr(err)
	}

	results := make([]OptionResult, 0, len(options))
	for _, opt := range options {
		res := OptionResult{
			OptionID: opt.ID,
			Text:     opt.Text,
			Position: opt.Position,
			Votes:    len(opt.Votes),
		}
		for _, v := range opt.Votes {
			if v.UserID == viewerID {
				res.UserVoted = true
				break
			}
		}
		results = append(results, res)
	}
	return results, nil
}

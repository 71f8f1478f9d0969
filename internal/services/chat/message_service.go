package chat

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"orgchat/internal/feed"
	"orgchat/internal/logger"
	modelChat "orgchat/internal/models/chat"
	"orgchat/internal/repositories"
	repoChat "orgchat/internal/repositories/chat"
	"orgchat/pkg/apperrors"
)

// Notifier is the fan-out seam consumed on send. Implementations must be
// best-effort: log and swallow failures, never fail the send.
type Notifier interface {
	FanOutMessage(ctx context.Context, msg *modelChat.Message, memberIDs []string)
}

type MessageService struct {
	Messages    repoChat.MessageRepository
	Members     repoChat.MemberRepository
	Reactions   repoChat.ReactionRepository
	Attachments *AttachmentService
	Users       repositories.UserRepository
	Index       *IndexService
	Notifier    Notifier
	Feed        *feed.Broker

	// DeleteWindow bounds delete-for-everyone for non-moderator owners.
	DeleteWindow  time.Duration
	TombstoneText string
}

type MessageServiceDeps struct {
	Messages    repoChat.MessageRepository
	Members     repoChat.MemberRepository
	Reactions   repoChat.ReactionRepository
	Attachments *AttachmentService
	Users       repositories.UserRepository
	Index       *IndexService
	Notifier    Notifier
	Feed        *feed.Broker
}

func NewMessageService(deps MessageServiceDeps, deleteWindow time.Duration, tombstoneText string) *MessageService {
	return &MessageService{
		Messages:      deps.Messages,
		Members:       deps.Members,
		Reactions:     deps.Reactions,
		Attachments:   deps.Attachments,
		Users:         deps.Users,
		Index:         deps.Index,
		Notifier:      deps.Notifier,
		Feed:          deps.Feed,
		DeleteWindow:  deleteWindow,
		TombstoneText: tombstoneText,
	}
}

type SendInput struct {
	ConversationID string
	SenderID       string
	SenderType     string // defaults to human
	Content        string
	ReplyToID      *string
	Attachments    []AttachmentInput
}

// Send validates membership, captures the reply snapshot if any, stores the
// message, then runs the secondary effects: attachment linking, index upsert
// and notification fan-out. The stored message is the durable outcome; a
// failed secondary effect is logged, never rolled back into the send.
func (s *MessageService) Send(ctx context.Context, input SendInput) (*modelChat.Message, error) {
	isMember, err := s.Members.IsMember(ctx, input.SenderID, input.ConversationID)
	if err != nil {
		return nil, storeErr(err)
	}
	if !isMember {
		return nil, apperrors.NewForbiddenError("sender is not a member of the conversation")
	}

	senderType := input.SenderType
	if senderType == "" {
		senderType = modelChat.SenderHuman
	}

	msg := &modelChat.Message{
		ID:             uuid.New().String(),
		ConversationID: input.ConversationID,
		SenderID:       input.SenderID,
		SenderType:     senderType,
		MessageType:    modelChat.MessageChat,
		Content:        input.Content,
		ReplyToID:      input.ReplyToID,
		CreatedAt:      time.Now(),
	}

	if input.ReplyToID != nil {
		msg.ReplySnapshot = s.captureReplySnapshot(ctx, *input.ReplyToID)
	}

	if err := s.Messages.Create(ctx, msg); err != nil {
		return nil, storeErr(err)
	}

	if s.Attachments != nil && len(input.Attachments) > 0 {
		attached, err := s.Attachments.AddToMessage(ctx, msg.ID, input.SenderID, input.Attachments)
		if err != nil {
			logger.WithError(err).Warn("attachment linking failed", "message_id", msg.ID)
		} else {
			msg.Attachments = attached
		}
	}

	s.runSecondaryEffects(ctx, msg)

	if s.Feed != nil {
		s.Feed.Publish(feed.Event{
			Table:          feed.TableMessages,
			Type:           feed.EventInsert,
			ConversationID: msg.ConversationID,
			Payload:        msg,
		})
	}

	return msg, nil
}

// captureReplySnapshot copies the replied-to message at send time. A missing
// or already-tombstoned original yields an empty snapshot; the send itself
// never fails on it.
func (s *MessageService) captureReplySnapshot(ctx context.Context, replyToID string) []byte {
	empty, _ := json.Marshal(modelChat.ReplySnapshotData{})

	original, err := s.Messages.FindByID(ctx, replyToID)
	if err != nil || original.IsTombstoned() {
		return empty
	}

	snap := modelChat.ReplySnapshotData{Content: original.Content}
	if sender, err := s.Users.FindByID(ctx, original.SenderID); err == nil {
		snap.SenderName = sender.DisplayName
		snap.SenderRole = sender.Role
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return empty
	}
	return data
}

// previewText is the sidebar preview of a message: its content, or the
// attachment marker for attachment-only sends.
func previewText(msg *modelChat.Message) string {
	if msg.Content == "" && len(msg.Attachments) > 0 {
		return "[attachment]"
	}
	return msg.Content
}

func (s *MessageService) runSecondaryEffects(ctx context.Context, msg *modelChat.Message) {
	preview := previewText(msg)
	if s.Index != nil {
		if err := s.Index.Update(ctx, msg.ConversationID, preview); err != nil {
			logger.WithError(err).Warn("conversation index update failed",
				"conversation_id", msg.ConversationID)
		}
	}

	if s.Notifier != nil && msg.SenderType == modelChat.SenderHuman {
		members, err := s.Members.GetMembers(ctx, msg.ConversationID)
		if err != nil {
			logger.WithError(err).Warn("notification fan-out skipped: member lookup failed",
				"conversation_id", msg.ConversationID)
			return
		}
		memberIDs := make([]string, 0, len(members))
		for _, m := range members {
			memberIDs = append(memberIDs, m.UserID)
		}
		s.Notifier.FanOutMessage(ctx, msg, memberIDs)
	}
}

// SendSystem stores a system-authored message through the same path, without
// notification fan-out.
func (s *MessageService) SendSystem(ctx context.Context, conversationID, senderID, content string) (*modelChat.Message, error) {
	return s.Send(ctx, SendInput{
		ConversationID: conversationID,
		SenderID:       senderID,
		SenderType:     modelChat.SenderSystem,
		Content:        content,
	})
}

// DeleteForMe hides the message from one viewer. Idempotent and unbounded in
// time; the hide list only grows.
func (s *MessageService) DeleteForMe(ctx context.Context, messageID, userID string) error {
	if _, err := s.Messages.FindByID(ctx, messageID); err != nil {
		return storeErr(err)
	}
	if err := s.Messages.AppendDeletedFor(ctx, messageID, userID); err != nil {
		return storeErr(err)
	}
	return nil
}

// DeleteForEveryone tombstones the message. Owners may do it within the
// delete window; moderators with a strictly higher role rank than the author
// at any time. Retrying an already-deleted message succeeds.
func (s *MessageService) DeleteForEveryone(ctx context.Context, messageID, requesterID string) (*modelChat.Message, error) {
	msg, err := s.Messages.FindByID(ctx, messageID)
	if err != nil {
		return nil, storeErr(err)
	}
	if msg.IsTombstoned() {
		return msg, nil
	}

	isOwner := msg.SenderID == requesterID
	isModerator, err := s.isModeratorOf(ctx, requesterID, msg.SenderID)
	if err != nil {
		return nil, err
	}

	if !isOwner && !isModerator {
		return nil, apperrors.NewForbiddenError("only the author or a moderator may delete for everyone")
	}
	if !isModerator && time.Since(msg.CreatedAt) > s.DeleteWindow {
		return nil, apperrors.ErrTimeExpired("message", "the delete-for-everyone window has passed")
	}

	now := time.Now()
	if err := s.Messages.Tombstone(ctx, msg.ID, requesterID, s.TombstoneText, now); err != nil {
		return nil, storeErr(err)
	}
	if err := s.Reactions.DeleteByMessageID(ctx, msg.ID); err != nil {
		logger.WithError(err).Warn("reaction clear after tombstone failed", "message_id", msg.ID)
	}
	if s.Attachments != nil {
		if err := s.Attachments.DeleteByMessageID(ctx, msg.ID); err != nil {
			logger.WithError(err).Warn("attachment clear after tombstone failed", "message_id", msg.ID)
		}
	}

	msg.Content = s.TombstoneText
	msg.DeletedAt = &now
	msg.DeletedBy = &requesterID
	msg.Reactions = nil
	msg.Attachments = nil

	// If this was the conversation's most recent message the sidebar preview
	// is stale; the tombstone text becomes the new preview.
	if s.Index != nil {
		latest, err := s.Messages.LatestInConversation(ctx, msg.ConversationID)
		if err == nil && latest.ID == msg.ID {
			if err := s.Index.Update(ctx, msg.ConversationID, s.TombstoneText); err != nil {
				logger.WithError(err).Warn("index refresh after tombstone failed",
					"conversation_id", msg.ConversationID)
			}
		}
	}

	if s.Feed != nil {
		s.Feed.Publish(feed.Event{
			Table:          feed.TableMessages,
			Type:           feed.EventUpdate,
			ConversationID: msg.ConversationID,
			Payload:        msg,
		})
	}

	return msg, nil
}

// ListMessages returns the conversation's messages visible to the viewer:
// tombstones included, rows the viewer deleted for themselves excluded.
func (s *MessageService) ListMessages(ctx context.Context, conversationID, viewerID string) ([]modelChat.Message, error) {
	isMember, err := s.Members.IsMember(ctx, viewerID, conversationID)
	if err != nil {
		return nil, storeErr(err)
	}
	if !isMember {
		return nil, apperrors.NewForbiddenError("viewer is not a member of the conversation")
	}

	msgs, err := s.Messages.GetByConversation(ctx, conversationID)
	if err != nil {
		return nil, storeErr(err)
	}

	visible := make([]modelChat.Message, 0, len(msgs))
	for _, m := range msgs {
		if m.HiddenFor(viewerID) {
			continue
		}
		visible = append(visible, m)
	}
	return visible, nil
}

// isModeratorOf resolves both roles and applies the static rank order. A
// missing requester or author profile disables moderation rather than
// failing the delete outright.
func (s *MessageService) isModeratorOf(ctx context.Context, requesterID, authorID string) (bool, error) {
	requester, err := s.Users.FindByID(ctx, requesterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, storeErr(err)
	}
	author, err := s.Users.FindByID(ctx, authorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, storeErr(err)
	}
	return CanModerate(requester.Role, author.Role), nil
}

package chat

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	modelChat "orgchat/internal/models/chat"
	repoChat "orgchat/internal/repositories/chat"
	"orgchat/pkg/apperrors"
)

type ConversationService struct {
	Conversations repoChat.ConversationRepository
	Members       repoChat.MemberRepository
	Messages      repoChat.MessageRepository
	Index         repoChat.IndexRepository
}

func NewConversationService(
	conversations repoChat.ConversationRepository,
	members repoChat.MemberRepository,
	messages repoChat.MessageRepository,
	index repoChat.IndexRepository,
) *ConversationService {
	return &ConversationService{
		Conversations: conversations,
		Members:       members,
		Messages:      messages,
		Index:         index,
	}
}

// directKey builds the deterministic pair key that makes the dm unique index
// order-independent.
func directKey(userA, userB string) string {
	if userA > userB {
		userA, userB = userB, userA
	}
	return userA + ":" + userB
}

// FindOrCreateDirect returns the dm conversation between the two users,
// creating it on first use. Lookup ignores org scoping: legacy dm rows carry
// a nil org. Safe under concurrent calls from both participants; the loser
// of the insert race re-reads the winner's row.
func (s *ConversationService) FindOrCreateDirect(ctx context.Context, userA, userB, orgID string) (*modelChat.Conversation, error) {
	if userA == userB {
		return nil, apperrors.NewBadRequestError("cannot open a direct conversation with yourself")
	}

	key := directKey(userA, userB)
	conv, err := s.Conversations.FindByDirectKey(ctx, key)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storeErr(err)
		}

		var org *string
		if orgID != "" {
			org = &orgID
		}
		fresh := &modelChat.Conversation{
			ID:        uuid.New().String(),
			Type:      modelChat.ConversationDirect,
			OrgID:     org,
			DirectKey: &key,
			CreatedAt: time.Now(),
		}
		if _, err := s.Conversations.CreateIfAbsent(ctx, fresh); err != nil {
			return nil, storeErr(err)
		}

		// Either we created it or the other participant did a moment ago;
		// the key lookup settles it.
		conv, err = s.Conversations.FindByDirectKey(ctx, key)
		if err != nil {
			return nil, storeErr(err)
		}
	}

	// Joined on the found path too: a row orphaned between the conversation
	// insert and the member inserts heals on the next open.
	for _, userID := range []string{userA, userB} {
		member := &modelChat.ConversationMember{
			ID:             uuid.New().String(),
			ConversationID: conv.ID,
			UserID:         userID,
			JoinedAt:       time.Now(),
		}
		if err := s.Members.Add(ctx, member); err != nil {
			return nil, storeErr(err)
		}
	}

	return conv, nil
}

type CreateTeamInput struct {
	CreatorID string
	MemberIDs []string
	Name      string
	OrgID     string
	// GrantCreatorAdmin is a caller policy decision; the engine does not
	// force the creator into the admin set.
	GrantCreatorAdmin bool
}

// CreateTeam creates a named group with the de-duplicated union of creator
// and members.
func (s *ConversationService) CreateTeam(ctx context.Context, input CreateTeamInput) (*modelChat.Conversation, error) {
	if input.Name == "" {
		return nil, apperrors.NewBadRequestError("team conversations require a name")
	}

	var org *string
	if input.OrgID != "" {
		org = &input.OrgID
	}
	admins := []string{}
	if input.GrantCreatorAdmin {
		admins = []string{input.CreatorID}
	}

	conv := &modelChat.Conversation{
		ID:        uuid.New().String(),
		Type:      modelChat.ConversationTeam,
		OrgID:     org,
		Name:      &input.Name,
		AdminIDs:  admins,
		CreatedAt: time.Now(),
	}
	if err := s.Conversations.Create(ctx, conv); err != nil {
		return nil, storeErr(err)
	}

	seen := map[string]bool{}
	members := make([]modelChat.ConversationMember, 0, len(input.MemberIDs)+1)
	for _, userID := range append([]string{input.CreatorID}, input.MemberIDs...) {
		if seen[userID] {
			continue
		}
		seen[userID] = true
		members = append(members, modelChat.ConversationMember{
			ID:             uuid.New().String(),
			ConversationID: conv.ID,
			UserID:         userID,
			JoinedAt:       time.Now(),
		})
	}
	if err := s.Members.CreateMany(ctx, members); err != nil {
		return nil, storeErr(err)
	}

	return conv, nil
}

// FindOrCreateOrgWide returns the single everyone conversation of the org,
// creating it on first use, and idempotently joins the caller.
func (s *ConversationService) FindOrCreateOrgWide(ctx context.Context, userID, orgID string) (*modelChat.Conversation, error) {
	conv, err := s.Conversations.FindByOrgWideKey(ctx, orgID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storeErr(err)
		}
		name := "Everyone"
		fresh := &modelChat.Conversation{
			ID:         uuid.New().String(),
			Type:       modelChat.ConversationEveryone,
			OrgID:      &orgID,
			Name:       &name,
			OrgWideKey: &orgID,
			CreatedAt:  time.Now(),
		}
		if _, err := s.Conversations.CreateIfAbsent(ctx, fresh); err != nil {
			return nil, storeErr(err)
		}
		conv, err = s.Conversations.FindByOrgWideKey(ctx, orgID)
		if err != nil {
			return nil, storeErr(err)
		}
	}

	member := &modelChat.ConversationMember{
		ID:             uuid.New().String(),
		ConversationID: conv.ID,
		UserID:         userID,
		JoinedAt:       time.Now(),
	}
	if err := s.Members.Add(ctx, member); err != nil {
		return nil, storeErr(err)
	}
	return conv, nil
}

// Promote grants targetID team admin. Idempotent: promoting an existing
// admin is a no-op. The actor must already be an admin.
func (s *ConversationService) Promote(ctx context.Context, conversationID, targetID, actorID string) error {
	conv, err := s.adminMutableConversation(ctx, conversationID, actorID)
	if err != nil {
		return err
	}
	if conv.IsAdmin(targetID) {
		return nil
	}
	admins := append([]string{}, conv.AdminIDs...)
	admins = append(admins, targetID)
	if err := s.Conversations.UpdateAdminIDs(ctx, conversationID, admins); err != nil {
		return storeErr(err)
	}
	return nil
}

// Demote removes targetID from the admin set. Removing the last remaining
// admin from themself is rejected so a group is never orphaned without one.
func (s *ConversationService) Demote(ctx context.Context, conversationID, targetID, actorID string) error {
	conv, err := s.adminMutableConversation(ctx, conversationID, actorID)
	if err != nil {
		return err
	}
	if !conv.IsAdmin(targetID) {
		return nil
	}
	if len(conv.AdminIDs) == 1 && targetID == actorID {
		return apperrors.ErrInvariantViolation("conversation", "cannot demote the last remaining admin")
	}
	admins := make([]string, 0, len(conv.AdminIDs))
	for _, id := range conv.AdminIDs {
		if id != targetID {
			admins = append(admins, id)
		}
	}
	if err := s.Conversations.UpdateAdminIDs(ctx, conversationID, admins); err != nil {
		return storeErr(err)
	}
	return nil
}

// IsAdmin is a pure lookup against the conversation's admin set.
func (s *ConversationService) IsAdmin(ctx context.Context, conversationID, userID string) (bool, error) {
	conv, err := s.Conversations.FindByID(ctx, conversationID)
	if err != nil {
		return false, storeErr(err)
	}
	return conv.IsAdmin(userID), nil
}

// DeleteTeam removes a team conversation and cascades its membership, index
// row and messages. Admin only.
func (s *ConversationService) DeleteTeam(ctx context.Context, conversationID, actorID string) error {
	conv, err := s.adminMutableConversation(ctx, conversationID, actorID)
	if err != nil {
		return err
	}
	if err := s.Messages.DeleteByConversation(ctx, conv.ID); err != nil {
		return storeErr(err)
	}
	if err := s.Members.DeleteByConversation(ctx, conv.ID); err != nil {
		return storeErr(err)
	}
	if err := s.Index.DeleteByConversation(ctx, conv.ID); err != nil {
		return storeErr(err)
	}
	if err := s.Conversations.Delete(ctx, conv.ID); err != nil {
		return storeErr(err)
	}
	return nil
}

// adminMutableConversation loads the conversation and authorizes an
// admin-set mutation by actorID: team conversations only, actor must already
// be an admin.
func (s *ConversationService) adminMutableConversation(ctx context.Context, conversationID, actorID string) (*modelChat.Conversation, error) {
	conv, err := s.Conversations.FindByID(ctx, conversationID)
	if err != nil {
		return nil, storeErr(err)
	}
	if conv.Type != modelChat.ConversationTeam {
		return nil, apperrors.ErrInvariantViolation("conversation", "admin roles exist only on team conversations")
	}
	if !conv.IsAdmin(actorID) {
		return nil, apperrors.NewForbiddenError("only team admins may do this")
	}
	return conv, nil
}

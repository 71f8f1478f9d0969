package handlers

import (
	"encoding/base64"
	"net/http"

	"github.com/gin-gonic/gin"

	"orgchat/internal/dto"
	chatService "orgchat/internal/services/chat"
	"orgchat/pkg/apperrors"
)

type ChatHandler struct {
	Conversations *chatService.ConversationService
	Messages      *chatService.MessageService
	Reactions     *chatService.ReactionService
	Polls         *chatService.PollService
	Index         *chatService.IndexService
}

func NewChatHandler(
	conversations *chatService.ConversationService,
	messages *chatService.MessageService,
	reactions *chatService.ReactionService,
	polls *chatService.PollService,
	index *chatService.IndexService,
) *ChatHandler {
	return &ChatHandler{
		Conversations: conversations,
		Messages:      messages,
		Reactions:     reactions,
		Polls:         polls,
		Index:         index,
	}
}

// CreateDirect POST /conversations/direct
func (h *ChatHandler) CreateDirect(c *gin.Context) {
	userID, ok := actingUser(c)
	if !ok {
		return
	}
	var input dto.CreateDirectInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, apperrors.ValidationError(err.Error()))
		return
	}

	conv, err := h.Conversations.FindOrCreateDirect(c.Request.Context(), userID, input.PeerID, input.OrgID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, conv)
}

// CreateTeam POST /conversations/team
func (h *ChatHandler) CreateTeam(c *gin.Context) {
	userID, ok := actingUser(c)
	if !ok {
		return
	}
	var input dto.CreateTeamInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, apperrors.ValidationError(err.Error()))
		return
	}

	conv, err := h.Conversations.CreateTeam(c.Request.Context(), chatService.CreateTeamInput{
		CreatorID:         userID,
		MemberIDs:         input.MemberIDs,
		Name:              input.Name,
		OrgID:             input.OrgID,
		GrantCreatorAdmin: input.GrantCreatorAdmin,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, conv)
}

// JoinOrgWide POST /conversations/everyone
func (h *ChatHandler) JoinOrgWide(c *gin.Context) {
	userID, ok := actingUser(c)
	if !ok {
		return
	}
	var input dto.JoinOrgWideInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, apperrors.ValidationError(err.Error()))
		return
	}

	conv, err := h.Conversations.FindOrCreateOrgWide(c.Request.Context(), userID, input.OrgID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, conv)
}

// ListConversations GET /conversations returns the sidebar listing with
// self-healing applied. Accepts an optional ?type= filter (dm, team,
// everyone).
func (h *ChatHandler) ListConversations(c *gin.Context) {
	userID, ok := actingUser(c)
	if !ok {
		return
	}
	var query dto.ListConversationsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondError(c, apperrors.ValidationError(err.Error()))
		return
	}

	listings, err := h.Index.ListForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if query.Type != "" {
		filtered := listings[:0]
		for _, l := range listings {
			if l.Conversation.Type == query.Type {
				filtered = append(filtered, l)
			}
		}
		listings = filtered
	}
	c.JSON(http.StatusOK, listings)
}

// Promote POST /conversations/:conversationID/admins
func (h *ChatHandler) Promote(c *gin.Context) {
	userID, ok := actingUser(c)
	if !ok {
		return
	}
	var input dto.AdminChangeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, apperrors.ValidationError(err.Error()))
		return
	}

	err := h.Conversations.Promote(c.Request.Context(), c.Param("conversationID"), input.TargetID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Demote DELETE /conversations/:conversationID/admins
func (h *ChatHandler) Demote(c *gin.Context) {
	userID, ok := actingUser(c)
	if !ok {
		return
	}
	var input dto.AdminChangeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, apperrors.ValidationError(err.Error()))
		return
	}

	err := h.Conversations.Demote(c.Request.Context(), c.Param("conversationID"), input.TargetID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteTeam DELETE /conversations/:conversationID
func (h *ChatHandler) DeleteTeam(c *gin.Context) {
	userID, ok := actingUser(c)
	if !ok {
		return
	}
	if err := h.Conversations.DeleteTeam(c.Request.Context(), c.Param("conversationID"), userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SendMessage POST /messages
func (h *ChatHandler) SendMessage(c *gin.Context) {
	userID, ok := actingUser(c)
	if !ok {
		return
	}
	var input dto.SendMessageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, apperrors.ValidationError(err.Error()))
		return
	}

	attachments := make([]chatService.AttachmentInput, 0, len(input.Attachments))
	for _, a := range input.Attachments {
		data, err := base64.StdEncoding.DecodeString(a.Data)
		if err != nil {
			respondError(c, apperrors.NewBadRequestError("attachment data must be base64"))
			return
		}
		attachments = append(attachments, chatService.AttachmentInput{
			FileName: a.FileName,
			MimeType: a.MimeType,
			Data:     data,
		})
	}

	msg, err := h.Messages.Send(c.Request.Context(), chatService.SendInput{
		ConversationID: input.ConversationID,
		SenderID:       userID,
		Content:        input.Content,
		ReplyToID:      input.ReplyToID,
		Attachments:    attachments,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// ListMessages GET /conversations/:conversationID/messages
func (h *ChatHandler) ListMessages(c *gin.Context) {
	userID, ok := actingUser(c)
	if !ok {
		return
	}
	msgs, err := h.Messages.ListMessages(c.Request.Context(), c.Param("conversationID"), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, msgs)
}

// DeleteForMe POST /messages/:messageID/delete-for-me
func (h *ChatHandler) DeleteForMe(c *gin.Context) {
	userID, ok := actingUser(c)
	if !ok {
		return
	}
	if err := h.Messages.DeleteForMe(c.Request.Context(), c.Param("messageID"), userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteForEveryone DELETE /messages/:messageID
func (h *ChatHandler) DeleteForEveryone(c *gin.Context) {
	userID, ok := actingUser(c)
	if !ok {
		return
	}
	msg, err := h.Messages.DeleteForEveryone(c.Request.Context(), c.Param("messageID"), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, msg)
}

// React POST /messages/:messageID/reactions
func (h *ChatHandler) React(c *gin.Context) {
	userID, ok := actingUser(c)
	if !ok {
		return
	}
	var input dto.ReactInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, apperrors.ValidationError(err.Error()))
		return
	}

	outcome, err := h.Reactions.Toggle(c.Request.Context(), c.Param("messageID"), userID, input.Emoji)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToggleOutcome{Outcome: outcome})
}

// ListReactions GET /messages/:messageID/reactions
func (h *ChatHandler) ListReactions(c *gin.Context) {
	if _, ok := actingUser(c); !ok {
		return
	}
	groups, err := h.Reactions.GroupedByMessage(c.Request.Context(), c.Param("messageID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, groups)
}

// CreatePoll POST /polls
func (h *ChatHandler) CreatePoll(c *gin.Context) {
	userID, ok := actingUser(c)
	if !ok {
		return
	}
	var input dto.CreatePollInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, apperrors.ValidationError(err.Error()))
		return
	}

	msg, err := h.Polls.CreatePoll(c.Request.Context(),
		input.ConversationID, userID, input.Question, input.Options, input.AllowMultiple)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// Vote POST /polls/options/:optionID/vote
func (h *ChatHandler) Vote(c *gin.Context) {
	userID, ok := actingUser(c)
	if !ok {
		return
	}
	outcome, err := h.Polls.Vote(c.Request.Context(), c.Param("optionID"), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToggleOutcome{Outcome: outcome})
}

// PollResults GET /polls/:messageID
func (h *ChatHandler) PollResults(c *gin.Context) {
	userID, ok := actingUser(c)
	if !ok {
		return
	}
	results, err := h.Polls.OptionsWithCounts(c.Request.Context(), c.Param("messageID"), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

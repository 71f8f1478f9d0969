package dto

// CreateDirectInput opens (or returns) the dm conversation with another user.
type CreateDirectInput struct {
	PeerID string `json:"peer_id" binding:"required"`
	OrgID  string `json:"org_id"`
}

// CreateTeamInput creates a named group conversation.
type CreateTeamInput struct {
	Name              string   `json:"name" binding:"required"`
	MemberIDs         []string `json:"member_ids" binding:"required"`
	OrgID             string   `json:"org_id"`
	GrantCreatorAdmin bool     `json:"grant_creator_admin"`
}

// JoinOrgWideInput joins (creating on first use) the org-wide conversation.
type JoinOrgWideInput struct {
	OrgID string `json:"org_id" binding:"required"`
}

// ListConversationsQuery narrows the sidebar to one conversation type.
type ListConversationsQuery struct {
	Type string `form:"type" binding:"omitempty,convtype"`
}

// AdminChangeInput promotes or demotes a team member.
type AdminChangeInput struct {
	TargetID string `json:"target_id" binding:"required"`
}

// SendMessageInput sends a chat message, optionally replying to another.
type SendMessageInput struct {
	ConversationID string             `json:"conversation_id" binding:"required"`
	Content        string             `json:"content"`
	ReplyToID      *string            `json:"reply_to_id"`
	Attachments    []AttachmentUpload `json:"attachments"`
}

// AttachmentUpload carries one base64-encoded file of a send request.
type AttachmentUpload struct {
	FileName string `json:"file_name" binding:"required"`
	MimeType string `json:"mime_type"`
	Data     string `json:"data" binding:"required"` // base64
}

// ReactInput toggles an emoji reaction.
type ReactInput struct {
	Emoji string `json:"emoji" binding:"required"`
}

// CreatePollInput creates a poll message.
type CreatePollInput struct {
	ConversationID string   `json:"conversation_id" binding:"required"`
	Question       string   `json:"question" binding:"required"`
	Options        []string `json:"options" binding:"required,min=2"`
	AllowMultiple  bool     `json:"allow_multiple"`
}

// ToggleOutcome reports which direction a toggle went.
type ToggleOutcome struct {
	Outcome string `json:"outcome"` // added or removed
}

package chat

import (
	"time"

	"github.com/lib/pq"
)

// Conversation types.
const (
	ConversationDirect   = "dm"
	ConversationTeam     = "team"
	ConversationEveryone = "everyone"
)

type Conversation struct {
	ID       string  `gorm:"primaryKey;type:uuid" json:"id"`
	Type     string  `gorm:"index;not null" json:"type"`
	OrgID    *string `gorm:"index" json:"org_id"` // nullable: legacy rows predate org scoping
	Name     *string `json:"name,omitempty"`
	AdminIDs pq.StringArray `gorm:"type:text[]" json:"admin_ids"` // team conversations only

	// DirectKey is "min(userA,userB):max(userA,userB)" for dm rows, nil
	// otherwise. The unique index makes concurrent find-or-create calls from
	// both participants converge on a single row.
	DirectKey *string `gorm:"uniqueIndex" json:"-"`

	// OrgWideKey equals OrgID for everyone rows, nil otherwise, enforcing at
	// most one org-wide conversation per organization.
	OrgWideKey *string `gorm:"uniqueIndex" json:"-"`

	CreatedAt time.Time `json:"created_at"`

	Members []ConversationMember `gorm:"foreignKey:ConversationID" json:"members,omitempty"`
}

func (Conversation) TableName() string {
	return "chat.conversations"
}

// IsAdmin reports whether userID is in the admin set.
func (c *Conversation) IsAdmin(userID string) bool {
	for _, id := range c.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

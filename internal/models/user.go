package models

// Known role names, ordered by moderation rank elsewhere.
const (
	RoleTutor         = "tutor"
	RoleMentor        = "mentor"
	RoleProjectMentor = "project-mentor"
	RoleStudent       = "student"
)

// User is the read-only slice of the account record the chat core needs:
// display names for reply snapshots and reaction lists, roles for moderation
// ranks. Account management itself lives outside this module.
type User struct {
	ID          string  `gorm:"primaryKey;type:uuid" json:"id"`
	DisplayName string  `json:"display_name"`
	Role        string  `gorm:"index" json:"role"`
	OrgID       *string `gorm:"index" json:"org_id"`
}

func (User) TableName() string {
	return "users"
}

package chat

// roleRank is the static moderation order. Roles outside the table rank 0,
// which means any ranked moderator may delete their messages; observed
// product behavior, kept as is.
var roleRank = map[string]int{
	"tutor":          4,
	"mentor":         3,
	"project-mentor": 2,
	"student":        1,
}

// CanModerate reports whether an actor with actorRole may delete a message
// authored by targetRole. Strictly higher rank is required; equals cannot
// moderate each other. Pure function, no side effects.
func CanModerate(actorRole, targetRole string) bool {
	return roleRank[actorRole] > roleRank[targetRole]
}

package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"orgchat/internal/handlers"
	modelChat "orgchat/internal/models/chat"
	"orgchat/ws"
)

// convtype validates conversation type values on request DTOs.
func convtype(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case modelChat.ConversationDirect, modelChat.ConversationTeam, modelChat.ConversationEveryone:
		return true
	}
	return false
}

// Register wires all API routes onto the engine.
func Register(
	r *gin.Engine,
	chat *handlers.ChatHandler,
	notifications *handlers.NotificationHandler,
	wsHandler *ws.Handler,
) {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("convtype", convtype)
	}

	api := r.Group("/api/v1")
	{
		api.POST("/conversations/direct", chat.CreateDirect)
		api.POST("/conversations/team", chat.CreateTeam)
		api.POST("/conversations/everyone", chat.JoinOrgWide)
		api.GET("/conversations", chat.ListConversations)
		api.DELETE("/conversations/:conversationID", chat.DeleteTeam)
		api.POST("/conversations/:conversationID/admins", chat.Promote)
		api.DELETE("/conversations/:conversationID/admins", chat.Demote)
		api.GET("/conversations/:conversationID/messages", chat.ListMessages)

		api.POST("/messages", chat.SendMessage)
		api.DELETE("/messages/:messageID", chat.DeleteForEveryone)
		api.POST("/messages/:messageID/delete-for-me", chat.DeleteForMe)
		api.POST("/messages/:messageID/reactions", chat.React)
		api.GET("/messages/:messageID/reactions", chat.ListReactions)

		api.POST("/polls", chat.CreatePoll)
		api.GET("/polls/:messageID", chat.PollResults)
		api.POST("/polls/options/:optionID/vote", chat.Vote)

		api.GET("/notifications", notifications.List)
		api.GET("/notifications/unread-count", notifications.UnreadCount)
		api.POST("/notifications/read-all", notifications.MarkAllRead)
		api.POST("/notifications/:notificationID/read", notifications.MarkRead)
	}

	r.GET("/ws", wsHandler.ServeWS)
}

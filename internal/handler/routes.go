package handler

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the conversation and message endpoints on an
// authenticated group.
func RegisterRoutes(rg *gin.RouterGroup, conversations *ConversationHandler, messages *MessageHandler) {
	conv := rg.Group("/conversations")
	{
		conv.POST("", conversations.Create)
		conv.GET("", conversations.List)
		conv.GET("/:id", conversations.GetByID)
		conv.POST("/:id/participants", conversations.AddParticipant)
		conv.DELETE("/:id/participants", conversations.RemoveParticipant)
		conv.POST("/:id/messages", messages.Send)
		conv.GET("/:id/messages", messages.List)
	}

	msg := rg.Group("/messages")
	{
		msg.PUT("/:id", messages.Update)
		msg.DELETE("/:id", messages.Delete)
	}
}

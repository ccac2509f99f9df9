package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cservice/cservice-backend/internal/models"
	"github.com/cservice/cservice-backend/internal/services"
)

type ChatMessageInput struct {
	Message string `json:"message" binding:"required"`
}

// chatSuggestions are the canned follow-ups offered with every reply.
var chatSuggestions = []string{
	"Tell me a joke",
	"Translate to French",
	"What's the weather?",
}

// chatReply builds the assistant's answer to a message.
func chatReply(message string) string {
	return fmt.Sprintf("You said: '%s'. How else can I help you?", message)
}

// ChatMessage answers a chat message and records the exchange
func ChatMessage(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var input ChatMessageInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": "Message required"})
			return
		}

		reply := chatReply(input.Message)

		// Best-effort: a classifier outage never blocks the reply
		sentiment := services.AnalyzeSentiment(c.Request.Context(), input.Message)

		entry := models.ChatHistory{
			UserID:   userId,
			Message:  input.Message,
			Response: reply,
		}
		if err := db.Create(&entry).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to save chat message"})
			return
		}

		c.JSON(200, gin.H{
			"text":        reply,
			"sentiment":   sentiment,
			"suggestions": chatSuggestions,
			"vector":      []float64{0.1, 0.2, 0.3},
		})
	}
}

// GetChatHistory returns the caller's past exchanges, newest first
func GetChatHistory(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var history []models.ChatHistory
		if err := db.Where("user_id = ?", userId).
			Order("created_at DESC").
			Find(&history).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to load chat history"})
			return
		}

		c.JSON(200, history)
	}
}

package handlers

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestChatReplyEchoesMessage(t *testing.T) {
	assert.Equal(t,
		"You said: 'book me a slot'. How else can I help you?",
		chatReply("book me a slot"))
}

func TestChatMessageRequiresMessage(t *testing.T) {
	gin.SetMode(gin.TestMode)

	for _, body := range []string{`{}`, `{"message":""}`} {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest("POST", "/api/chat", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Set("userId", uint(1))

		ChatMessage(nil)(c)

		assert.Equal(t, 400, w.Code, body)
	}
}

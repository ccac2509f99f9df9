package models

import (
	"gorm.io/gorm"
)

// ChatHistory is one assistant exchange: the user's message and the reply
// that was sent back.
type ChatHistory struct {
	gorm.Model
	UserID   uint   `json:"userId" gorm:"column:user_id;not null;index"`
	User     User   `json:"-" gorm:"foreignKey:UserID"`
	Message  string `json:"message" gorm:"column:message;not null"`
	Response string `json:"response" gorm:"column:response;not null"`
}

// TableName specifies the table name
func (ChatHistory) TableName() string {
	return "chat_history"
}

package models

import (
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model          // This embeds ID, CreatedAt, UpdatedAt, and DeletedAt
	Username     string `json:"username" gorm:"column:username;unique;not null"`
	Email        string `json:"email" gorm:"column:email;unique;not null"`
	Password     string `json:"-" gorm:"-:migration"` // Temporary field for password handling
	PasswordHash string `json:"-" gorm:"column:password_hash;not null"`
	FullName     string `json:"fullName" gorm:"column:full_name"`
}

// TableName specifies the table name
func (User) TableName() string {
	return "users"
}

func (u *User) HashPassword() error {
	if u.Password == "" {
		return nil
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}

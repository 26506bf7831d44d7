package models

import (
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

type User struct {
	gorm.Model        // This embeds ID, CreatedAt, UpdatedAt, and DeletedAt
	Username     string `gorm:"column:username;unique;not null" json:"username"`
	Email        string `gorm:"column:email;unique;not null" json:"email"`
	Password     string `gorm:"-" json:"-"` // Temporary field for password handling
	PasswordHash string `gorm:"column:password_hash;not null" json:"-"`
	FirstName    string `gorm:"column:first_name" json:"firstName"`
	LastName     string `gorm:"column:last_name" json:"lastName"`
	Role         Role   `gorm:"column:role;not null;default:USER" json:"role"`
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

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

package models

import (
	"gorm.io/gorm"

	"golang.org/x/crypto/bcrypt"
)

type User struct {
	BaseUUIDModel
	FirstName   string       `gorm:"type:varchar(64);not null"        json:"firstName"`
	LastName    string       `gorm:"type:varchar(64);not null"        json:"lastName"`
	DisplayName string       `gorm:"type:varchar(128)"                json:"displayName"`
	Email       *string      `gorm:"type:varchar(128);uniqueIndex"    json:"email,omitempty"`
	Login       string       `gorm:"type:varchar(64);not null;unique" json:"login"`
	Password    string       `gorm:"type:varchar(128);not null"       json:"-"`
	Role        ReviewerRole `gorm:"type:varchar(32);index"           json:"role"`
	IsAdmin     bool         `gorm:"not null;default:false"           json:"isAdmin"`

	Assignments []Assignment `gorm:"foreignKey:UserID" json:"assignments,omitempty"`
}

func (u *User) BeforeSave(tx *gorm.DB) error {
	if err := u.BaseUUIDModel.BeforeSave(tx); err != nil {
		return err
	}

	if u.Password != "" && !isBcryptHash(u.Password) {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		u.Password = string(hash)
	}

	return nil
}

func isBcryptHash(s string) bool {
	return len(s) == 60 && s[0] == '$'
}

func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) == nil
}

package models

import "time"

type User struct {
	ID           int        `json:"id" gorm:"primaryKey;autoIncrement"`
	Username     string     `json:"username" gorm:"type:varchar(150);uniqueIndex;not null"`
	Email        string     `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string     `json:"-" gorm:"type:varchar(255);not null"`
	Phone        string     `json:"phone" gorm:"type:varchar(15)"`
	Gender       string     `json:"gender" gorm:"type:varchar(10)"`
	DOB          *time.Time `json:"dob,omitempty"`
	AvatarURL    *string    `json:"avatar_url,omitempty" gorm:"type:varchar(512)"`
	DateJoined   time.Time  `json:"date_joined" gorm:"autoCreateTime"`
}

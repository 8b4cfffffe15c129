package models

import "time"

type User struct {
	ID           uint   `gorm:"primaryKey"`
	FullName     string `gorm:"size:120;not null;index"`
	Email        string `gorm:"size:200;uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	AvatarURL    string
	CreatedAt    time.Time
}

package models

import (
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Name         string `gorm:"not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	RewardPoints int    `gorm:"default:0"` // Бонусные баллы (начисляются за подтверждение, переходят при обмене)
}

type Institution struct {
	gorm.Model
	Name         string `gorm:"index;not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	Phone        string
	PasswordHash string `gorm:"not null"`
	Address      string
}
